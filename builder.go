package authflow

import (
	"errors"
	"net/http"
	"time"

	"github.com/plannerhub/authflow/api"
	"github.com/plannerhub/authflow/session"
)

// Builder assembles a Controller. Zero or more With* calls, then Build.
// A Builder is single-use.
type Builder struct {
	config Config

	httpClient *http.Client
	navigator  Navigator
	ephemeral  session.Tier
	durable    session.Tier
	eventSink  EventSink
	clock      func() time.Time

	built bool
}

func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the planner service URL without replacing the rest of
// the config.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Service.BaseURL = baseURL
	return b
}

func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithNavigator sets the route sink. Without one, navigation requests are
// dropped.
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithEphemeralTier replaces the in-memory tab-lifetime tier.
func (b *Builder) WithEphemeralTier(t session.Tier) *Builder {
	b.ephemeral = t
	return b
}

// WithDurableTier enables the opt-in persistent tier backing "keep me
// signed in".
func (b *Builder) WithDurableTier(t session.Tier) *Builder {
	b.durable = t
	return b
}

func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// withClock injects a test clock for the lockout guard.
func (b *Builder) withClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Service.RequestTimeout}
	}

	ephemeral := b.ephemeral
	if ephemeral == nil {
		ephemeral = session.NewMemoryTier()
	}

	// Without an explicit durable tier, "remember me" lasts only for the
	// process lifetime.
	durable := b.durable
	if durable == nil {
		durable = session.NewMemoryTier()
	}

	nav := b.navigator
	if nav == nil {
		nav = noopNavigator{}
	}

	c := &Controller{
		config:    cfg,
		client:    api.NewClient(cfg.Service.BaseURL, httpClient),
		store:     session.NewStore(ephemeral, durable, cfg.Storage.KeyPrefix),
		lockout:   NewLockoutGuard(cfg.Lockout.MaxAttempts, cfg.Lockout.Window, b.clock),
		navigator: nav,
		events:    newEventDispatcher(cfg.Events, b.eventSink),
		metrics:   NewMetrics(cfg.Metrics),
	}
	c.form = newFormState()

	b.built = true

	return c, nil
}
