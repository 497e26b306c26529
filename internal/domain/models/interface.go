package models

import (
	"fmt"

	"github.com/gosnmp/gosnmp"
)

// InterfaceType is the connection kind of a host interface
type InterfaceType int

const (
	InterfaceAgent InterfaceType = 1
	InterfaceSNMP  InterfaceType = 2
	InterfaceIPMI  InterfaceType = 3
	InterfaceJMX   InterfaceType = 4
)

// Interface is a host connection endpoint. Details carries the variant
// specific part: PlainDetails or SNMPDetails.
type Interface struct {
	ID      uint64
	Main    int
	UseIP   int
	IP      string
	DNS     string
	Port    string
	Details InterfaceDetails
}

// InterfaceDetails is implemented by PlainDetails and SNMPDetails only
type InterfaceDetails interface {
	Type() InterfaceType
	sameAs(other InterfaceDetails) bool
}

// Type returns the interface type
func (i *Interface) Type() InterfaceType {
	if i.Details == nil {
		return InterfaceAgent
	}
	return i.Details.Type()
}

// SNMP returns SNMP parameters when the interface is the SNMP variant
func (i *Interface) SNMP() (SNMPDetails, bool) {
	s, ok := i.Details.(SNMPDetails)
	return s, ok
}

// Equal compares every attribute of two interfaces except their ids
func (i *Interface) Equal(o *Interface) bool {
	if i.Type() != o.Type() || i.Main != o.Main || i.UseIP != o.UseIP {
		return false
	}
	if i.IP != o.IP || i.DNS != o.DNS || i.Port != o.Port {
		return false
	}
	if i.Details == nil || o.Details == nil {
		return i.Details == nil && o.Details == nil
	}
	return i.Details.sameAs(o.Details)
}

// PlainDetails is the variant of agent, IPMI and JMX interfaces
type PlainDetails struct {
	Kind InterfaceType
}

// Type implements InterfaceDetails
func (d PlainDetails) Type() InterfaceType {
	return d.Kind
}

func (d PlainDetails) sameAs(other InterfaceDetails) bool {
	o, ok := other.(PlainDetails)
	return ok && o.Kind == d.Kind
}

// SNMP version codes as persisted in interface_snmp.version
const (
	SNMPVersion1  = 1
	SNMPVersion2c = 2
	SNMPVersion3  = 3
)

// SNMPDetails is the SNMP variant with its interface_snmp row
type SNMPDetails struct {
	Version        int
	Bulk           int
	Community      string
	SecurityName   string
	SecurityLevel  int
	AuthPassphrase string
	PrivPassphrase string
	AuthProtocol   int
	PrivProtocol   int
	ContextName    string
}

// Type implements InterfaceDetails
func (d SNMPDetails) Type() InterfaceType {
	return InterfaceSNMP
}

func (d SNMPDetails) sameAs(other InterfaceDetails) bool {
	o, ok := other.(SNMPDetails)
	return ok && o == d
}

var snmpVersions = map[int]gosnmp.SnmpVersion{
	SNMPVersion1:  gosnmp.Version1,
	SNMPVersion2c: gosnmp.Version2c,
	SNMPVersion3:  gosnmp.Version3,
}

var snmpSecurityLevels = map[int]gosnmp.SnmpV3MsgFlags{
	0: gosnmp.NoAuthNoPriv,
	1: gosnmp.AuthNoPriv,
	2: gosnmp.AuthPriv,
}

var snmpAuthProtocols = map[int]gosnmp.SnmpV3AuthProtocol{
	0: gosnmp.MD5,
	1: gosnmp.SHA,
	2: gosnmp.SHA224,
	3: gosnmp.SHA256,
	4: gosnmp.SHA384,
	5: gosnmp.SHA512,
}

var snmpPrivProtocols = map[int]gosnmp.SnmpV3PrivProtocol{
	0: gosnmp.DES,
	1: gosnmp.AES,
	2: gosnmp.AES192,
	3: gosnmp.AES256,
	4: gosnmp.AES192C,
	5: gosnmp.AES256C,
}

// GoSNMPVersion maps the persisted version code
func (d SNMPDetails) GoSNMPVersion() (gosnmp.SnmpVersion, error) {
	v, ok := snmpVersions[d.Version]
	if !ok {
		return 0, fmt.Errorf("unknown SNMP version code %d", d.Version)
	}
	return v, nil
}

// UsmParameters builds the v3 user security parameters described by the row.
// Only meaningful for SNMPv3.
func (d SNMPDetails) UsmParameters() (gosnmp.SnmpV3MsgFlags, *gosnmp.UsmSecurityParameters, error) {
	flags, ok := snmpSecurityLevels[d.SecurityLevel]
	if !ok {
		return 0, nil, fmt.Errorf("unknown SNMP security level %d", d.SecurityLevel)
	}
	usm := &gosnmp.UsmSecurityParameters{
		UserName:                 d.SecurityName,
		AuthenticationProtocol:   gosnmp.NoAuth,
		PrivacyProtocol:          gosnmp.NoPriv,
		AuthenticationPassphrase: d.AuthPassphrase,
		PrivacyPassphrase:        d.PrivPassphrase,
	}
	if flags&gosnmp.AuthNoPriv != 0 {
		if usm.AuthenticationProtocol, ok = snmpAuthProtocols[d.AuthProtocol]; !ok {
			return 0, nil, fmt.Errorf("unknown SNMP auth protocol %d", d.AuthProtocol)
		}
	}
	if flags&gosnmp.AuthPriv == gosnmp.AuthPriv {
		if usm.PrivacyProtocol, ok = snmpPrivProtocols[d.PrivProtocol]; !ok {
			return 0, nil, fmt.Errorf("unknown SNMP priv protocol %d", d.PrivProtocol)
		}
	}
	return flags, usm, nil
}

// Validate checks that every protocol code maps to a known SNMP setting
func (d SNMPDetails) Validate() error {
	v, err := d.GoSNMPVersion()
	if err != nil {
		return err
	}
	if v != gosnmp.Version3 {
		return nil
	}
	_, _, err = d.UsmParameters()
	return err
}

// Describe renders the parameters for audit records without secrets
func (d SNMPDetails) Describe() string {
	v, err := d.GoSNMPVersion()
	if err != nil {
		return fmt.Sprintf("version=%d", d.Version)
	}
	if v != gosnmp.Version3 {
		return fmt.Sprintf("version=%s bulk=%d", v, d.Bulk)
	}
	_, usm, err := d.UsmParameters()
	if err != nil {
		return fmt.Sprintf("version=%s level=%d", v, d.SecurityLevel)
	}
	return fmt.Sprintf("version=%s bulk=%d user=%s auth=%s priv=%s",
		v, d.Bulk, usm.UserName, usm.AuthenticationProtocol, usm.PrivacyProtocol)
}
