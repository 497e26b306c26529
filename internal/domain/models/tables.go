package models

// TableID names a persisted table touched by synchronization
type TableID int

const (
	// TblHosts table 'hosts'
	TblHosts TableID = iota

	// TblItems table 'items'
	TblItems

	// TblHostDiscovery table 'host_discovery'
	TblHostDiscovery

	// TblHostInventory table 'host_inventory'
	TblHostInventory

	// TblHostsTemplates table 'hosts_templates'
	TblHostsTemplates

	// TblHostGroups table 'hstgrp'
	TblHostGroups

	// TblHostsGroups table 'hosts_groups'
	TblHostsGroups

	// TblGroupPrototype table 'group_prototype'
	TblGroupPrototype

	// TblGroupDiscovery table 'group_discovery'
	TblGroupDiscovery

	// TblHostMacro table 'hostmacro'
	TblHostMacro

	// TblHostTag table 'host_tag'
	TblHostTag

	// TblInterface table 'interface'
	TblInterface

	// TblInterfaceSNMP table 'interface_snmp'
	TblInterfaceSNMP

	// TblGraphs table 'graphs'
	TblGraphs

	// TblGraphsItems table 'graphs_items'
	TblGraphsItems

	// TblIDs table 'ids'
	TblIDs
)

// String stringer interface impl
func (tid TableID) String() string {
	return tableID2string[tid]
}

var tableID2string = map[TableID]string{
	TblHosts:          "hosts",
	TblItems:          "items",
	TblHostDiscovery:  "host_discovery",
	TblHostInventory:  "host_inventory",
	TblHostsTemplates: "hosts_templates",
	TblHostGroups:     "hstgrp",
	TblHostsGroups:    "hosts_groups",
	TblGroupPrototype: "group_prototype",
	TblGroupDiscovery: "group_discovery",
	TblHostMacro:      "hostmacro",
	TblHostTag:        "host_tag",
	TblInterface:      "interface",
	TblInterfaceSNMP:  "interface_snmp",
	TblGraphs:         "graphs",
	TblGraphsItems:    "graphs_items",
	TblIDs:            "ids",
}
