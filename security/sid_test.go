package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSIDRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		subs  []uint32
		auth  uint64
	}{
		{name: "everyone", input: "S-1-1-0", auth: 1, subs: []uint32{0}},
		{name: "builtin administrators", input: "S-1-5-32-544", auth: 5, subs: []uint32{32, 544}},
		{name: "domain user", input: "S-1-5-21-3623811015-3361044348-30300820-1013", auth: 5, subs: []uint32{21, 3623811015, 3361044348, 30300820, 1013}},
		{name: "no sub-authorities", input: "S-1-5", auth: 5, subs: []uint32{}},
		{name: "hex authority", input: "S-1-0xFFFFFFFFFFFF-7", auth: 0xFFFFFFFFFFFF, subs: []uint32{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid, err := ParseSID(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.auth, sid.Authority())
			require.Equal(t, tt.subs, sid.SubAuthorities())
			require.Equal(t, 8+4*len(tt.subs), sid.Len())
			require.Equal(t, tt.input, sid.String())

			again, err := SIDFromBytes(sid.Bytes())
			require.NoError(t, err)
			require.True(t, sid.Equal(again))
		})
	}
}

func TestParseSIDRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "S-1", "X-1-5-32", "S-2-5-32", "S-1-5-abc", "S-1-5-99999999999", "S-1-5-1-2-3-4-5-6-7-8-9-10-11-12-13-14-15-16"} {
		_, err := ParseSID(input)
		require.ErrorIs(t, err, ErrMalformed, input)
	}
}

func TestSIDFromBytes(t *testing.T) {
	admins := []byte{1, 2, 0, 0, 0, 0, 0, 5, 32, 0, 0, 0, 0x20, 0x02, 0, 0}

	sid, err := SIDFromBytes(append(admins, 0xAA, 0xBB))
	require.NoError(t, err)
	require.Equal(t, "S-1-5-32-544", sid.String())
	require.Equal(t, admins, sid.Bytes())

	// The returned SID does not alias the input.
	buf := append([]byte(nil), admins...)
	sid, err = SIDFromBytes(buf)
	require.NoError(t, err)
	buf[15] = 0xFF
	require.Equal(t, "S-1-5-32-544", sid.String())

	_, err = SIDFromBytes(admins[:12])
	require.ErrorIs(t, err, ErrMalformed)
	_, err = SIDFromBytes(admins[:4])
	require.ErrorIs(t, err, ErrMalformed)

	badRevision := append([]byte{2}, admins[1:]...)
	_, err = SIDFromBytes(badRevision)
	require.ErrorIs(t, err, ErrMalformed)

	tooMany := append([]byte(nil), admins...)
	tooMany[1] = 16
	_, err = SIDFromBytes(tooMany)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestUnixSIDs(t *testing.T) {
	require.Equal(t, "S-1-22-1-1000", UnixUserSID(1000).String())
	require.Equal(t, "S-1-22-2-0", UnixGroupSID(0).String())

	text, err := UnixUserSID(42).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "S-1-22-1-42", string(text))

	var empty SID
	require.True(t, empty.IsEmpty())
	require.Equal(t, "", empty.String())
}
