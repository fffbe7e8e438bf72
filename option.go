package pantry

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile holds the numeric knobs that differ between deployment presets.
// All other behavior is fixed; tuning prefetch aggressiveness is a matter of
// picking a profile (or loading one from YAML) and passing it via
// WithProfile.
type Profile struct {
	MaxConcurrentRequests int      `yaml:"max_concurrent_requests"`
	MaxQueueSize          int      `yaml:"max_queue_size"`
	DefaultTTL            Duration `yaml:"default_ttl"`
	MaxBytesPerSession    int64    `yaml:"max_bytes_per_session"` // 0 = unlimited
	ImagePrefetchLimit    int      `yaml:"image_prefetch_limit"`
}

// StandardProfile is the default balance of responsiveness and data use.
func StandardProfile() Profile {
	return Profile{
		MaxConcurrentRequests: 3,
		MaxQueueSize:          50,
		DefaultTTL:            DurationFrom(5 * time.Minute),
		MaxBytesPerSession:    50 << 20, // 50MB
		ImagePrefetchLimit:    10,
	}
}

// AggressiveProfile prefetches more, sooner. Suitable for wifi-heavy usage.
func AggressiveProfile() Profile {
	return Profile{
		MaxConcurrentRequests: 6,
		MaxQueueSize:          200,
		DefaultTTL:            DurationFrom(15 * time.Minute),
		MaxBytesPerSession:    200 << 20, // 200MB
		ImagePrefetchLimit:    25,
	}
}

// ConservativeProfile minimizes background data use.
func ConservativeProfile() Profile {
	return Profile{
		MaxConcurrentRequests: 1,
		MaxQueueSize:          20,
		DefaultTTL:            DurationFrom(2 * time.Minute),
		MaxBytesPerSession:    10 << 20, // 10MB
		ImagePrefetchLimit:    4,
	}
}

func (p Profile) validate() error {
	if p.MaxConcurrentRequests <= 0 || p.MaxQueueSize <= 0 ||
		p.DefaultTTL.Duration <= 0 || p.ImagePrefetchLimit <= 0 ||
		p.MaxBytesPerSession < 0 {
		return ErrInvalidProfile
	}
	return nil
}

// LoadProfile parses a YAML profile. Fields left out keep the standard
// profile's values, so a file only needs to name the knobs it overrides.
func LoadProfile(r io.Reader) (Profile, error) {
	p := StandardProfile()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadProfileFile reads a YAML profile from disk.
func LoadProfileFile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, err
	}
	defer f.Close()
	return LoadProfile(f)
}

// Duration wraps time.Duration to support human-readable YAML values
// ("5m", "90s") as well as plain numeric seconds.
type Duration struct {
	time.Duration
}

// DurationFrom creates a Duration from a standard time.Duration.
func DurationFrom(d time.Duration) Duration {
	return Duration{Duration: d}
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
		return nil
	case int:
		d.Duration = time.Duration(v) * time.Second
		return nil
	case float64:
		d.Duration = time.Duration(v * float64(time.Second))
		return nil
	default:
		return fmt.Errorf("unsupported duration type %T", raw)
	}
}

// options carries shared construction knobs across the package's components.
type options struct {
	profile Profile
	logger  Logger
	device  DeviceStateFunc
	clock   func() time.Time

	scrollLookahead  int
	historySize      int
	dispatchRate     float64 // requests/sec; 0 = unlimited
	recentCacheSize  int
	recentTTL        time.Duration // 0 = profile DefaultTTL
	periodicInterval time.Duration
	predictionCount  int
	screenContent    map[string]ContentType
}

func defaultOptions() options {
	return options{
		profile:          StandardProfile(),
		logger:           DiscardLogger{},
		device:           defaultDeviceState,
		clock:            time.Now,
		scrollLookahead:  6,
		historySize:      100,
		dispatchRate:     0,
		recentCacheSize:  512,
		periodicInterval: 15 * time.Minute,
		predictionCount:  3,
		screenContent:    defaultScreenContent(),
	}
}

// Option configures package components using the functional options pattern.
type Option func(*options)

// WithProfile selects the numeric prefetch preset.
func WithProfile(p Profile) Option {
	return func(o *options) { o.profile = p }
}

// WithLogger plugs in a structured logger. Defaults to a no-op.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDeviceState supplies the platform snapshot used by admission gates.
func WithDeviceState(f DeviceStateFunc) Option {
	return func(o *options) {
		if f != nil {
			o.device = f
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithScrollLookahead sets how many items past the last visible index
// PrefetchForScroll covers.
func WithScrollLookahead(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.scrollLookahead = n
		}
	}
}

// WithHistorySize bounds the predictor's navigation history.
func WithHistorySize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.historySize = n
		}
	}
}

// WithDispatchRate caps dispatched fetches per second. Zero means no cap.
func WithDispatchRate(perSecond float64) Option {
	return func(o *options) {
		if perSecond >= 0 {
			o.dispatchRate = perSecond
		}
	}
}

// WithRecentCache sizes the dispatcher's recently-fetched LRU and the
// lifetime of its entries. A zero ttl falls back to the profile's DefaultTTL.
func WithRecentCache(size int, ttl time.Duration) Option {
	return func(o *options) {
		if size > 0 {
			o.recentCacheSize = size
		}
		if ttl > 0 {
			o.recentTTL = ttl
		}
	}
}

// WithPeriodicInterval sets how often the scheduler runs its idle batch.
func WithPeriodicInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.periodicInterval = d
		}
	}
}

// WithPredictionCount sets how many predicted screens the scheduler
// prefetches for on navigation events.
func WithPredictionCount(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.predictionCount = n
		}
	}
}

// WithScreenContent maps screen identifiers to the content type prefetched
// when the predictor expects that screen next.
func WithScreenContent(m map[string]ContentType) Option {
	return func(o *options) {
		if m != nil {
			o.screenContent = m
		}
	}
}
