package readers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ResolveItemKeys maps template item ids onto the host items sharing their key
func (r *Reader) ResolveItemKeys(ctx context.Context, hostID uint64, itemIDs []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	args := r.args()
	query := fmt.Sprintf("select ti.itemid,hi.itemid from items hi,items ti where hi.key_=ti.key_ and hi.hostid=%s and %s",
		args.Add(hostID), args.In("ti.itemid", itemIDs))

	rows, err := r.query(ctx, query, args.Values()...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve items of host %d", hostID)
	}
	defer rows.Close()

	for rows.Next() {
		var templateItemID, hostItemID uint64
		if err := rows.Scan(&templateItemID, &hostItemID); err != nil {
			return nil, errors.Wrap(err, "failed to scan item pair")
		}
		out[templateItemID] = hostItemID
	}
	return out, errors.Wrap(rows.Err(), "failed to read item pairs")
}
