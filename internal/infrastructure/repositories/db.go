package repositories

import (
	"templatesync-pg-backend/internal/domain/models"
)

// ColumnKind is the portable type of a column
type ColumnKind int

const (
	// ColID unsigned 64-bit identifier
	ColID ColumnKind = iota
	// ColInt 32-bit integer
	ColInt
	// ColFloat double precision
	ColFloat
	// ColString bounded varchar, Size is the bound
	ColString
	// ColText unbounded text
	ColText
)

// Column describes one table column
type Column struct {
	Name     string
	Kind     ColumnKind
	Size     int
	Nullable bool
	Default  string
}

// Index describes a secondary index
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// ForeignKey references the primary key of another table
type ForeignKey struct {
	Column    string
	RefTable  models.TableID
	RefColumn string
	Cascade   bool
}

// Table describes a persisted table
type Table struct {
	ID         models.TableID
	Key        string
	Columns    []Column
	Indexes    []Index
	ForeignKey []ForeignKey

	// ServerOnly tables are absent from proxy databases
	ServerOnly bool
}

// Name returns the table name
func (t Table) Name() string {
	return t.ID.String()
}

// PrimaryKey returns the key columns; tables without a surrogate key use
// their first column.
func (t Table) PrimaryKey() []string {
	if t.Key != "" {
		return []string{t.Key}
	}
	return []string{t.Columns[0].Name}
}

func id(name string) Column           { return Column{Name: name, Kind: ColID} }
func nullID(name string) Column       { return Column{Name: name, Kind: ColID, Nullable: true} }
func integer(name, def string) Column { return Column{Name: name, Kind: ColInt, Default: def} }
func double(name, def string) Column  { return Column{Name: name, Kind: ColFloat, Default: def} }
func str(name string, size int) Column {
	return Column{Name: name, Kind: ColString, Size: size, Default: "''"}
}
func text(name string) Column { return Column{Name: name, Kind: ColText, Default: "''"} }
func fk(col string, ref models.TableID, refCol string, cascade bool) ForeignKey {
	return ForeignKey{Column: col, RefTable: ref, RefColumn: refCol, Cascade: cascade}
}

// Tables is the schema of every table the engine reads or writes, in
// creation order.
var Tables = []Table{
	{
		ID:  models.TblHosts,
		Key: "hostid",
		Columns: []Column{
			id("hostid"), str("host", 128), str("name", 128), integer("status", "0"),
			integer("flags", "0"), nullID("templateid"), integer("discover", "0"),
			integer("custom_interfaces", "0"),
		},
		Indexes:    []Index{{Name: "hosts_1", Columns: []string{"host"}}, {Name: "hosts_2", Columns: []string{"templateid"}}},
		ForeignKey: []ForeignKey{fk("templateid", models.TblHosts, "hostid", true)},
	},
	{
		ID:  models.TblItems,
		Key: "itemid",
		Columns: []Column{
			id("itemid"), id("hostid"), str("key_", 255), nullID("templateid"), integer("flags", "0"),
		},
		Indexes: []Index{{Name: "items_1", Columns: []string{"hostid", "key_"}, Unique: true}},
		ForeignKey: []ForeignKey{
			fk("hostid", models.TblHosts, "hostid", true),
			fk("templateid", models.TblItems, "itemid", true),
		},
	},
	{
		ID:         models.TblHostDiscovery,
		Columns:    []Column{id("hostid"), nullID("parent_itemid")},
		ForeignKey: []ForeignKey{fk("hostid", models.TblHosts, "hostid", true), fk("parent_itemid", models.TblItems, "itemid", false)},
		ServerOnly: true,
	},
	{
		ID:         models.TblHostInventory,
		Columns:    []Column{id("hostid"), integer("inventory_mode", "0")},
		ForeignKey: []ForeignKey{fk("hostid", models.TblHosts, "hostid", true)},
		ServerOnly: true,
	},
	{
		ID:      models.TblHostsTemplates,
		Key:     "hosttemplateid",
		Columns: []Column{id("hosttemplateid"), id("hostid"), id("templateid"), integer("link_type", "0")},
		Indexes: []Index{{Name: "hosts_templates_1", Columns: []string{"hostid", "templateid"}, Unique: true}},
		ForeignKey: []ForeignKey{
			fk("hostid", models.TblHosts, "hostid", true),
			fk("templateid", models.TblHosts, "hostid", true),
		},
		ServerOnly: true,
	},
	{
		ID:      models.TblHostGroups,
		Key:     "groupid",
		Columns: []Column{id("groupid"), str("name", 255), integer("flags", "0"), integer("type", "0")},
		Indexes: []Index{{Name: "hstgrp_1", Columns: []string{"type", "name"}, Unique: true}},
	},
	{
		ID:      models.TblHostsGroups,
		Key:     "hostgroupid",
		Columns: []Column{id("hostgroupid"), id("hostid"), id("groupid")},
		Indexes: []Index{{Name: "hosts_groups_1", Columns: []string{"hostid", "groupid"}, Unique: true}},
		ForeignKey: []ForeignKey{
			fk("hostid", models.TblHosts, "hostid", true),
			fk("groupid", models.TblHostGroups, "groupid", true),
		},
	},
	{
		ID:      models.TblGroupPrototype,
		Key:     "group_prototypeid",
		Columns: []Column{id("group_prototypeid"), id("hostid"), str("name", 255), nullID("groupid"), nullID("templateid")},
		Indexes: []Index{{Name: "group_prototype_1", Columns: []string{"hostid"}}},
		ForeignKey: []ForeignKey{
			fk("hostid", models.TblHosts, "hostid", true),
			fk("groupid", models.TblHostGroups, "groupid", false),
			fk("templateid", models.TblGroupPrototype, "group_prototypeid", true),
		},
		ServerOnly: true,
	},
	{
		ID:      models.TblGroupDiscovery,
		Columns: []Column{id("groupid"), id("parent_group_prototypeid"), str("name", 255)},
		ForeignKey: []ForeignKey{
			fk("groupid", models.TblHostGroups, "groupid", true),
			fk("parent_group_prototypeid", models.TblGroupPrototype, "group_prototypeid", false),
		},
		ServerOnly: true,
	},
	{
		ID:  models.TblHostMacro,
		Key: "hostmacroid",
		Columns: []Column{
			id("hostmacroid"), id("hostid"), str("macro", 255), str("value", 2048), text("description"),
			integer("type", "0"), integer("automatic", "0"),
		},
		Indexes:    []Index{{Name: "hostmacro_1", Columns: []string{"hostid", "macro"}, Unique: true}},
		ForeignKey: []ForeignKey{fk("hostid", models.TblHosts, "hostid", true)},
	},
	{
		ID:         models.TblHostTag,
		Key:        "hosttagid",
		Columns:    []Column{id("hosttagid"), id("hostid"), str("tag", 255), str("value", 255), integer("automatic", "0")},
		Indexes:    []Index{{Name: "host_tag_1", Columns: []string{"hostid"}}},
		ForeignKey: []ForeignKey{fk("hostid", models.TblHosts, "hostid", true)},
	},
	{
		ID:  models.TblInterface,
		Key: "interfaceid",
		Columns: []Column{
			id("interfaceid"), id("hostid"), integer("main", "0"), integer("type", "1"), integer("useip", "1"),
			str("ip", 64), str("dns", 255), str("port", 64),
		},
		Indexes:    []Index{{Name: "interface_1", Columns: []string{"hostid", "type"}}},
		ForeignKey: []ForeignKey{fk("hostid", models.TblHosts, "hostid", true)},
	},
	{
		ID: models.TblInterfaceSNMP,
		Columns: []Column{
			id("interfaceid"), integer("version", "2"), integer("bulk", "1"), str("community", 64),
			str("securityname", 64), integer("securitylevel", "0"), str("authpassphrase", 64),
			str("privpassphrase", 64), integer("authprotocol", "0"), integer("privprotocol", "0"),
			str("contextname", 255),
		},
		ForeignKey: []ForeignKey{fk("interfaceid", models.TblInterface, "interfaceid", true)},
	},
	{
		ID:  models.TblGraphs,
		Key: "graphid",
		Columns: []Column{
			id("graphid"), str("name", 128), integer("width", "900"), integer("height", "200"),
			double("yaxismin", "0"), double("yaxismax", "100"), nullID("templateid"),
			integer("show_work_period", "1"), integer("show_triggers", "1"), integer("graphtype", "0"),
			integer("show_legend", "1"), integer("show_3d", "0"), double("percent_left", "0"),
			double("percent_right", "0"), integer("ymin_type", "0"), integer("ymax_type", "0"),
			nullID("ymin_itemid"), nullID("ymax_itemid"), integer("flags", "0"), integer("discover", "0"),
		},
		Indexes: []Index{{Name: "graphs_1", Columns: []string{"name"}}, {Name: "graphs_2", Columns: []string{"templateid"}}},
		ForeignKey: []ForeignKey{
			fk("templateid", models.TblGraphs, "graphid", true),
			fk("ymin_itemid", models.TblItems, "itemid", false),
			fk("ymax_itemid", models.TblItems, "itemid", false),
		},
		ServerOnly: true,
	},
	{
		ID:  models.TblGraphsItems,
		Key: "gitemid",
		Columns: []Column{
			id("gitemid"), id("graphid"), id("itemid"), integer("drawtype", "0"), integer("sortorder", "0"),
			str("color", 6), integer("yaxisside", "0"), integer("calc_fnc", "2"), integer("type", "0"),
		},
		Indexes: []Index{{Name: "graphs_items_1", Columns: []string{"itemid"}}, {Name: "graphs_items_2", Columns: []string{"graphid"}}},
		ForeignKey: []ForeignKey{
			fk("graphid", models.TblGraphs, "graphid", true),
			fk("itemid", models.TblItems, "itemid", true),
		},
		ServerOnly: true,
	},
	{
		ID:      models.TblIDs,
		Columns: []Column{str("table_name", 64), str("field_name", 64), id("nextid")},
		Indexes: []Index{{Name: "ids_1", Columns: []string{"table_name", "field_name"}, Unique: true}},
	},
}

// TableByID returns the schema of a table
func TableByID(tid models.TableID) (Table, bool) {
	for _, t := range Tables {
		if t.ID == tid {
			return t, true
		}
	}
	return Table{}, false
}

// KeyColumn returns the surrogate key column of a table or "" when it has none
func KeyColumn(tid models.TableID) string {
	t, _ := TableByID(tid)
	return t.Key
}

// TablesFor returns the tables present in the database of the given program
func TablesFor(program models.ProgramType) []Table {
	out := make([]Table, 0, len(Tables))
	for _, t := range Tables {
		if t.ServerOnly && program == models.ProgramProxy {
			continue
		}
		out = append(out, t)
	}
	return out
}
