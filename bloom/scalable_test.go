package bloom

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(prefix string, i int) []byte {
	return []byte(prefix + strconv.Itoa(i))
}

func TestBasic(t *testing.T) {
	f, err := New(1000, 0.01, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.NumFilters())

	for _, k := range []string{"alice", "bob", "carol"} {
		added, err := f.Add([]byte(k))
		require.NoError(t, err)
		assert.True(t, added, k)
	}
	assert.True(t, f.Exists([]byte("alice")))
	assert.True(t, f.Exists([]byte("bob")))
	t.Logf("dave present: %v", f.Exists([]byte("dave")))

	added, err := f.Add([]byte("alice"))
	require.NoError(t, err)
	assert.False(t, added)

	added, err = f.Add([]byte("eve"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, uint64(4), f.Items())
}

func TestScaling(t *testing.T) {
	f, err := New(1000, 0.001, Options{})
	require.NoError(t, err)

	for i := 0; i < 2500; i++ {
		_, err := f.Add(key("k", i))
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, f.NumFilters(), 2)
	for i := 0; i < 2500; i++ {
		assert.True(t, f.Exists(key("k", i)))
	}
}

func TestScalingTightens(t *testing.T) {
	f, err := New(1000, 0.001, Options{})
	require.NoError(t, err)

	for i := 0; f.NumFilters() < 3; i++ {
		_, err := f.Add(key("grow", i))
		require.NoError(t, err)
	}

	// Each appended sub-filter doubles the target and halves the error.
	assert.Equal(t, uint64(1000), f.subs[0].entries)
	assert.Equal(t, uint64(2000), f.subs[1].entries)
	assert.Equal(t, uint64(4000), f.subs[2].entries)
	assert.InDelta(t, 0.001, f.subs[0].errorRate, 1e-9)
	assert.InDelta(t, 0.0005, f.subs[1].errorRate, 1e-9)
	assert.InDelta(t, 0.00025, f.subs[2].errorRate, 1e-9)
	assert.Greater(t, f.subs[1].bits, f.subs[0].bits)
}

func TestNoScaling(t *testing.T) {
	f, err := New(1000, 0.01, Options{NoScaling: true})
	require.NoError(t, err)

	overCapacity := 0
	for i := 0; i < 5000; i++ {
		_, err := f.Add(key("n", i))
		if err != nil {
			assert.ErrorIs(t, err, ErrOverCapacity)
			overCapacity++
		}
	}
	assert.Equal(t, 1, f.NumFilters())
	assert.Greater(t, overCapacity, 0)

	// Over-capacity adds still wrote their bits.
	for i := 0; i < 5000; i++ {
		assert.True(t, f.Exists(key("n", i)))
	}
}

func TestFalsePositiveRate(t *testing.T) {
	f, err := New(1000, 0.01, Options{})
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		_, err := f.Add(key("in-", i))
		require.NoError(t, err)
	}
	falsePositives := 0
	for i := 0; i < 10000; i++ {
		if f.Exists(key("out-", i)) {
			falsePositives++
		}
	}
	// Twice the configured rate bounds the scaled worst case; a single
	// level sized for its load sits far below it.
	assert.LessOrEqual(t, falsePositives, 200)
}

func TestHashVariants(t *testing.T) {
	f, err := New(1000, 0.01, Options{})
	require.NoError(t, err)

	k := []byte("shared")
	h := CalcHash(k)

	added, err := f.AddHash(h)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, f.Exists(k))
	assert.True(t, f.ExistsHash(h))

	added, err = f.Add(k)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestAddIdempotent(t *testing.T) {
	f, err := New(1000, 0.01, Options{})
	require.NoError(t, err)

	k := []byte("repeat")
	added, err := f.Add(k)
	require.NoError(t, err)
	assert.True(t, added)

	for i := 0; i < 5; i++ {
		added, err := f.Add(k)
		require.NoError(t, err)
		assert.False(t, added)
	}
	assert.Equal(t, uint64(1), f.Items())
	assert.True(t, f.Exists(k))
}

func TestUninitialized(t *testing.T) {
	var f Filter
	_, err := f.AddHash(HashValue{A: 1, B: 2})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, f.ExistsHash(HashValue{A: 1, B: 2}))
}

func TestInvalidInit(t *testing.T) {
	_, err := New(10, 0.01, Options{})
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = New(1000, 2, Options{})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestAccounting(t *testing.T) {
	f, err := New(1000, 0.01, Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), f.Cap())
	assert.Equal(t, uint64(16384), f.TotalBits())
	assert.Equal(t, uint64(2048), f.TotalBytes())

	for i := 0; i < 1500; i++ {
		_, err := f.Add(key("acct", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.NumFilters())
	assert.Equal(t, uint64(3000), f.Cap())
}

func TestOptionsFlagsRoundTrip(t *testing.T) {
	assert.Equal(t, uint32(0), Options{}.Flags())

	all := Options{NoRound: true, EntriesIsBits: true, Force64: true, NoScaling: true}
	assert.Equal(t, uint32(15), all.Flags())
	assert.Equal(t, all, OptionsFromFlags(15))

	assert.Equal(t, Options{NoRound: true}, OptionsFromFlags(FlagNoRound))
	assert.Equal(t, Options{EntriesIsBits: true}, OptionsFromFlags(FlagEntriesIsBits))
	assert.Equal(t, Options{Force64: true}, OptionsFromFlags(FlagForce64))
	assert.Equal(t, Options{NoScaling: true}, OptionsFromFlags(FlagNoScaling))

	f, err := New(1000, 0.01, OptionsFromFlags(FlagNoScaling))
	require.NoError(t, err)
	assert.True(t, f.Options().NoScaling)
}
