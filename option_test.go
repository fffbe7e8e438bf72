package pantry

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestNamedProfilesAreValid(t *testing.T) {
	t.Parallel()

	for name, p := range map[string]Profile{
		"standard":     StandardProfile(),
		"aggressive":   AggressiveProfile(),
		"conservative": ConservativeProfile(),
	} {
		assert.NoError(t, p.validate(), "profile %s", name)
	}

	// The presets only move the numeric knobs, in one direction.
	std, agg, con := StandardProfile(), AggressiveProfile(), ConservativeProfile()
	assert.Greater(t, agg.MaxQueueSize, std.MaxQueueSize)
	assert.Less(t, con.MaxQueueSize, std.MaxQueueSize)
	assert.Greater(t, agg.MaxConcurrentRequests, std.MaxConcurrentRequests)
	assert.Less(t, con.MaxBytesPerSession, std.MaxBytesPerSession)
}

func TestLoadProfileOverridesSelectively(t *testing.T) {
	t.Parallel()

	in := strings.NewReader(`
max_queue_size: 75
default_ttl: 90s
`)
	p, err := LoadProfile(in)
	require.NoError(t, err)

	assert.Equal(t, 75, p.MaxQueueSize)
	assert.Equal(t, 90*time.Second, p.DefaultTTL.Duration)
	// Untouched knobs keep the standard values.
	assert.Equal(t, StandardProfile().MaxConcurrentRequests, p.MaxConcurrentRequests)
	assert.Equal(t, StandardProfile().ImagePrefetchLimit, p.ImagePrefetchLimit)
}

func TestLoadProfileNumericSeconds(t *testing.T) {
	t.Parallel()

	p, err := LoadProfile(strings.NewReader("default_ttl: 300\n"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, p.DefaultTTL.Duration)
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := LoadProfile(strings.NewReader("max_queue_size: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidProfile)

	_, err = LoadProfile(strings.NewReader("default_ttl: [nope]\n"))
	assert.Error(t, err)
}

func TestLoadProfileFile(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/profile.yaml"
	require.NoError(t, writeFile(path, "max_concurrent_requests: 8\nimage_prefetch_limit: 2\n"))

	p, err := LoadProfileFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, p.MaxConcurrentRequests)
	assert.Equal(t, 2, p.ImagePrefetchLimit)

	_, err = LoadProfileFile(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	d := DurationFrom(90 * time.Second)
	raw, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", raw)
}
