// Copyright 2025 OpenPubkey
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package security

import "strings"

// AccessType says whether an ACE grants or denies its rights.
type AccessType uint8

const (
	Allow AccessType = iota
	Deny
)

func (a AccessType) String() string {
	if a == Deny {
		return "Deny"
	}
	return "Allow"
}

func (a AccessType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// InheritanceFlags controls which kinds of children inherit an ACE.
type InheritanceFlags uint8

const (
	InheritNone      InheritanceFlags = 0
	ContainerInherit InheritanceFlags = 1
	ObjectInherit    InheritanceFlags = 2
)

func (f InheritanceFlags) String() string {
	if f == InheritNone {
		return "None"
	}
	var parts []string
	if f&ContainerInherit != 0 {
		parts = append(parts, "ContainerInherit")
	}
	if f&ObjectInherit != 0 {
		parts = append(parts, "ObjectInherit")
	}
	return strings.Join(parts, ", ")
}

func (f InheritanceFlags) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// PropagationFlags controls how an inheritable ACE propagates.
type PropagationFlags uint8

const (
	PropagateNone      PropagationFlags = 0
	NoPropagateInherit PropagationFlags = 1
	InheritOnly        PropagationFlags = 2
)

func (f PropagationFlags) String() string {
	if f == PropagateNone {
		return "None"
	}
	var parts []string
	if f&NoPropagateInherit != 0 {
		parts = append(parts, "NoPropagateInherit")
	}
	if f&InheritOnly != 0 {
		parts = append(parts, "InheritOnly")
	}
	return strings.Join(parts, ", ")
}

func (f PropagationFlags) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// AccountType classifies a resolved account.
type AccountType uint8

const (
	Unclassified AccountType = iota
	User
	Group
	WellknownGroup
)

func (t AccountType) String() string {
	switch t {
	case User:
		return "User"
	case Group:
		return "Group"
	case WellknownGroup:
		return "WellknownGroup"
	default:
		return "Unclassified"
	}
}

func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// SidNameUse is the SID_NAME_USE value reported by an account lookup.
type SidNameUse uint32

const (
	SidTypeUser SidNameUse = iota + 1
	SidTypeGroup
	SidTypeDomain
	SidTypeAlias
	SidTypeWellKnownGroup
	SidTypeDeletedAccount
	SidTypeInvalid
	SidTypeUnknown
	SidTypeComputer
)

// AccountType maps the lookup classification onto the audit classification.
// Aliases (local groups such as BUILTIN\Administrators) count as groups.
func (u SidNameUse) AccountType() AccountType {
	switch u {
	case SidTypeUser:
		return User
	case SidTypeGroup, SidTypeAlias:
		return Group
	case SidTypeWellKnownGroup:
		return WellknownGroup
	default:
		return Unclassified
	}
}

// SecurityInformation selects the parts of a security descriptor to query.
type SecurityInformation uint32

const (
	OwnerSecurityInformation SecurityInformation = 0x1
	GroupSecurityInformation SecurityInformation = 0x2
	DaclSecurityInformation  SecurityInformation = 0x4
)

// Acl is one decoded access rule of a directory's DACL.
type Acl struct {
	AccountName      string           `json:"account" yaml:"account"`
	AccessType       AccessType       `json:"access" yaml:"access"`
	Rights           Rights           `json:"rights" yaml:"rights"`
	Inherited        bool             `json:"inherited" yaml:"inherited"`
	InheritanceFlags InheritanceFlags `json:"inheritance" yaml:"inheritance"`
	PropagationFlags PropagationFlags `json:"propagation" yaml:"propagation"`
	AccountType      AccountType      `json:"accountType" yaml:"accountType"`
	// AceType is the raw ACE type code the entry was decoded from.
	AceType uint8 `json:"aceType" yaml:"aceType"`
}

// Equal compares two rules by account, access type, rights and flags.
// Inherited, AccountType and AceType are not part of a rule's identity.
func (a Acl) Equal(other Acl) bool {
	return a.AccountName == other.AccountName &&
		a.AccessType == other.AccessType &&
		a.Rights == other.Rights &&
		a.InheritanceFlags == other.InheritanceFlags &&
		a.PropagationFlags == other.PropagationFlags
}

// ResolvedAccount is the outcome of resolving a SID to an account.
type ResolvedAccount struct {
	Name        string
	Domain      string
	AccountType AccountType
	Unresolved  bool
	SID         SID
}

// QualifiedName returns domain\name, or just the name when there is no domain.
func (r ResolvedAccount) QualifiedName() string {
	if r.Unresolved {
		return ""
	}
	if r.Domain == "" {
		return r.Name
	}
	return r.Domain + `\` + r.Name
}

// DisplayName is QualifiedName with the SID string standing in for
// accounts that could not be resolved.
func (r ResolvedAccount) DisplayName() string {
	if name := r.QualifiedName(); name != "" {
		return name
	}
	return r.SID.String()
}
