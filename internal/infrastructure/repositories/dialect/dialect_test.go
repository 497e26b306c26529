package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/infrastructure/repositories"
)

func TestNew(t *testing.T) {
	d, err := New(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d.Name())

	d, err = New(DriverMySQL)
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, d.Name())

	_, err = New("oracle")
	assert.ErrorIs(t, err, ports.ErrUnknownDialect)
}

func TestRender_Update(t *testing.T) {
	stmt := ports.UpdateStatement{
		TableID:   models.TblGraphs,
		Set:       []ports.Assignment{{Column: "name", Value: "CPU"}, {Column: "width", Value: 900}},
		KeyColumn: "graphid",
		Key:       42,
	}

	sql, args, err := Render(Postgres{}, stmt)
	require.NoError(t, err)
	assert.Equal(t, "update graphs set name=$1,width=$2 where graphid=$3", sql)
	assert.Equal(t, []any{"CPU", 900, uint64(42)}, args)

	sql, _, err = Render(MySQL{}, stmt)
	require.NoError(t, err)
	assert.Equal(t, "update graphs set name=?,width=? where graphid=?", sql)
}

func TestRender_Delete(t *testing.T) {
	stmt := ports.DeleteStatement{TableID: models.TblHostMacro, KeyColumn: "hostmacroid", Keys: []uint64{3, 4}}

	sql, args, err := Render(Postgres{}, stmt)
	require.NoError(t, err)
	assert.Equal(t, "delete from hostmacro where hostmacroid in ($1,$2)", sql)
	assert.Equal(t, []any{uint64(3), uint64(4)}, args)

	_, _, err = Render(Postgres{}, ports.DeleteStatement{TableID: models.TblHostMacro, KeyColumn: "hostmacroid"})
	assert.Error(t, err)
}

func TestInsertStatement(t *testing.T) {
	sql, args := InsertStatement(MySQL{}, "host_tag", []string{"hosttagid", "tag"}, [][]any{{1, "a"}, {2, "b"}})
	assert.Equal(t, "insert into host_tag (hosttagid,tag) values (?,?),(?,?)", sql)
	assert.Len(t, args, 4)
}

func TestRenameIndexStatement(t *testing.T) {
	tbl, ok := repositories.TableByID(models.TblGraphs)
	require.True(t, ok)

	assert.Equal(t, "alter index graphs_1 rename to graphs_3", Postgres{}.RenameIndexStatement(tbl, "graphs_1", "graphs_3"))
	assert.Equal(t, "alter table graphs rename index graphs_1 to graphs_3", MySQL{}.RenameIndexStatement(tbl, "graphs_1", "graphs_3"))
}

func TestSchemaStatements_ProxySkipsServerTables(t *testing.T) {
	server := SchemaStatements(Postgres{}, repositories.TablesFor(models.ProgramServer))
	proxy := SchemaStatements(Postgres{}, repositories.TablesFor(models.ProgramProxy))

	assert.Contains(t, server, "create index graphs_1 on graphs (name)")
	assert.NotContains(t, proxy, "create index graphs_1 on graphs (name)")
	assert.Less(t, len(proxy), len(server))

	for _, stmt := range proxy {
		assert.NotContains(t, stmt, "references graphs ")
	}
}

func TestCreateTableStatement(t *testing.T) {
	tbl, _ := repositories.TableByID(models.TblHostTag)

	pg := Postgres{}.CreateTableStatement(tbl)
	assert.Contains(t, pg, "create table host_tag (")
	assert.Contains(t, pg, "hosttagid bigint not null,")
	assert.Contains(t, pg, "tag varchar(255) default '' not null,")
	assert.Contains(t, pg, "primary key (hosttagid)")

	my := MySQL{}.CreateTableStatement(tbl)
	assert.Contains(t, my, "hosttagid bigint unsigned not null,")
	assert.Contains(t, my, "engine=InnoDB")
}
