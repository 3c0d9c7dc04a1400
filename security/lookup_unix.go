//go:build !windows
// +build !windows

package security

import (
	"fmt"
	"os/user"
	"strconv"
)

const (
	unixUserDomain  = "Unix User"
	unixGroupDomain = "Unix Group"
)

type wellKnownAccount struct {
	name   string
	domain string
	use    SidNameUse
}

// wellKnownAccounts answers for the SIDs Windows resolves without a domain
// controller, so descriptors copied from Windows still resolve here.
var wellKnownAccounts = map[string]wellKnownAccount{
	"S-1-1-0":      {"Everyone", "", SidTypeWellKnownGroup},
	"S-1-3-0":      {"CREATOR OWNER", "", SidTypeWellKnownGroup},
	"S-1-3-1":      {"CREATOR GROUP", "", SidTypeWellKnownGroup},
	"S-1-5-11":     {"Authenticated Users", "NT AUTHORITY", SidTypeWellKnownGroup},
	"S-1-5-18":     {"SYSTEM", "NT AUTHORITY", SidTypeWellKnownGroup},
	"S-1-5-32-544": {"Administrators", "BUILTIN", SidTypeAlias},
	"S-1-5-32-545": {"Users", "BUILTIN", SidTypeAlias},
}

// PortableLookup resolves S-1-22 Unix user and group SIDs through the
// system user database, plus a table of well-known SIDs.
type PortableLookup struct{}

// DefaultLookup returns the account lookup for this platform.
func DefaultLookup() AccountLookup { return PortableLookup{} }

func (PortableLookup) LookupAccountSid(sid SID, name, domain []uint16) (uint32, uint32, SidNameUse, error) {
	acct, err := lookupPortable(sid)
	if err != nil {
		return 0, 0, 0, err
	}
	return fillAccount(acct.name, acct.domain, acct.use, name, domain)
}

func lookupPortable(sid SID) (wellKnownAccount, error) {
	if acct, ok := wellKnownAccounts[sid.String()]; ok {
		return acct, nil
	}
	subs := sid.SubAuthorities()
	if sid.Authority() != AuthorityUnixUsers || len(subs) != 2 {
		return wellKnownAccount{}, fmt.Errorf("%w: %s", ErrNotMapped, sid)
	}
	id := strconv.FormatUint(uint64(subs[1]), 10)
	switch subs[0] {
	case 1:
		u, err := user.LookupId(id)
		if err != nil {
			return wellKnownAccount{}, fmt.Errorf("%w: uid %s: %w", ErrNotMapped, id, err)
		}
		return wellKnownAccount{u.Username, unixUserDomain, SidTypeUser}, nil
	case 2:
		g, err := user.LookupGroupId(id)
		if err != nil {
			return wellKnownAccount{}, fmt.Errorf("%w: gid %s: %w", ErrNotMapped, id, err)
		}
		return wellKnownAccount{g.Name, unixGroupDomain, SidTypeGroup}, nil
	}
	return wellKnownAccount{}, fmt.Errorf("%w: %s", ErrNotMapped, sid)
}
