package security

import "syscall"

type fakeAccount struct {
	name   string
	domain string
	use    SidNameUse
}

// fakeLookup answers from a table with LookupAccountSid buffer semantics
// and records every call.
type fakeLookup struct {
	accounts map[string]fakeAccount
	// failRetry makes the call after the sizing call fail.
	failRetry error
	calls     int
}

func (f *fakeLookup) LookupAccountSid(sid SID, name, domain []uint16) (uint32, uint32, SidNameUse, error) {
	f.calls++
	acct, ok := f.accounts[sid.String()]
	if !ok {
		return 0, 0, 0, ErrNotMapped
	}
	if f.failRetry != nil && (len(name) > 0 || len(domain) > 0) {
		return 0, 0, 0, f.failRetry
	}
	return fillAccount(acct.name, acct.domain, acct.use, name, domain)
}

// fakeSource serves canned descriptors per path and records the requested
// information classes.
type fakeSource struct {
	descriptors map[string][]byte
	err         error
	requested   []SecurityInformation
	paths       []string
}

func (f *fakeSource) SecurityDescriptor(path string, info SecurityInformation) ([]byte, error) {
	f.requested = append(f.requested, info)
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.descriptors[path]
	if !ok {
		return nil, syscall.ENOENT
	}
	return b, nil
}

type fakeShortener struct {
	short map[string]string
	err   error
}

func (f fakeShortener) ShortPath(path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if s, ok := f.short[path]; ok {
		return s, nil
	}
	return path, nil
}

type countingResolver struct {
	next  AccountResolver
	calls int
}

func (c *countingResolver) Resolve(sid SID) ResolvedAccount {
	c.calls++
	return c.next.Resolve(sid)
}
