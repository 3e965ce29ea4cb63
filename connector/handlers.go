package connector

import (
	"context"
	"errors"
	"log/slog"

	genattr "github.com/identitykit/genattr"
	"github.com/identitykit/genattr/config"
	"github.com/identitykit/genattr/directory"
	"github.com/identitykit/genattr/engine"
	"github.com/identitykit/genattr/input"
	"github.com/identitykit/genattr/rule"
	"github.com/identitykit/genattr/schema"
	"github.com/identitykit/genattr/state"
	"github.com/identitykit/genattr/template"
	"github.com/identitykit/genattr/types"
)

// Option configures the connector built by New.
type Option func(*handlers)

// WithLogger sets the connector logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *handlers) {
		h.logger = logger
	}
}

// WithStateStore overrides the counter-state store the configuration would
// otherwise select. Intended for tests and embedding hosts that manage
// persistence themselves.
func WithStateStore(store state.Store) Option {
	return func(h *handlers) {
		h.store = store
	}
}

// handlers binds the engine, the directory client, and the state store
// behind the standard command set.
type handlers struct {
	cfg       *config.Config
	client    directory.Client
	logger    *slog.Logger
	engine    *engine.Engine
	processor *engine.Processor
	store     state.Store
}

// New builds the connector from a validated configuration and a directory
// client, wiring the six standard commands.
func New(cfg *config.Config, client directory.Client, opts ...Option) (*Connector, error) {
	if cfg == nil {
		return nil, genattr.NewConfigurationError("connector.New", errors.New("configuration is required"))
	}
	if client == nil {
		return nil, genattr.NewConfigurationError("connector.New", errors.New("directory client is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &handlers{
		cfg:    cfg,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	evaluator, err := template.New(h.logger)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg.Attributes, evaluator, h.logger)
	if err != nil {
		return nil, err
	}
	h.engine = eng

	processor, err := engine.NewProcessor(eng, cfg.Attributes,
		engine.WithUniquenessScope(cfg.UniquenessScope),
		engine.WithLogger(h.logger))
	if err != nil {
		return nil, err
	}
	h.processor = processor

	b := NewBuilder().
		SetName("genattr").
		SetVersion(genattr.Version).
		SetLogger(h.logger)

	if h.store == nil && cfg.State.Backend == config.BackendRedis {
		store, err := state.NewRedisStore(state.RedisOptions{
			URL: cfg.State.RedisURL,
			Key: cfg.State.RedisKey,
		})
		if err != nil {
			return nil, genattr.NewStateError("connector.New", err)
		}
		h.store = store
		b.SetCloser(store.Close)
	}
	return b.
		AddCommand(CmdTestConnection, h.testConnection).
		AddCommand(CmdDiscoverSchema, h.discoverSchema).
		AddCommand(CmdAccountList, h.listAccounts).
		AddCommand(CmdAccountRead, h.readAccount).
		AddCommand(CmdAccountCreate, h.createAccount).
		AddCommand(CmdAccountUpdate, h.updateAccount).
		Build()
}

func (h *handlers) testConnection(ctx context.Context, _ *Input, res *Response) error {
	if err := h.client.TestConnection(ctx); err != nil {
		return err
	}
	return res.Send(map[string]any{})
}

func (h *handlers) discoverSchema(_ context.Context, _ *Input, res *Response) error {
	return res.Send(schema.Account(h.cfg.Attributes))
}

// listAccounts runs the rule set over the full population. Counter state is
// loaded from the configured store (or the host-persisted blob when the
// backend is memory), updated by the run, and saved back.
func (h *handlers) listAccounts(ctx context.Context, in *Input, res *Response) error {
	seed, err := h.loadState(ctx, in)
	if err != nil {
		return err
	}

	identities, err := h.client.Search(ctx, h.cfg.Search, directory.IndexIdentities, false)
	if err != nil {
		return err
	}
	accounts, err := h.client.ListAccountsBySource(ctx, h.cfg.SourceID)
	if err != nil {
		return err
	}

	existing := make(engine.ExistingAccounts, len(accounts))
	for _, a := range accounts {
		existing[a.IdentityID] = a.Attributes
	}

	newState, err := h.processor.Run(ctx, identities, existing, seed, func(account types.Account) error {
		return res.Send(account)
	})
	if err != nil {
		return err
	}

	if h.store != nil {
		if err := h.store.Save(ctx, newState); err != nil {
			return genattr.NewStateError("connector.listAccounts", err)
		}
	}
	res.SaveState(newState)
	return nil
}

func (h *handlers) readAccount(ctx context.Context, in *Input, res *Response) error {
	identity, err := h.lookupIdentity(ctx, in, "connector.readAccount")
	if err != nil {
		return err
	}

	account, err := h.assembleSingle(ctx, identity)
	if err != nil {
		return err
	}
	return res.Send(account)
}

// createAccount computes the account for one identity, resolved by name
// first and by id as a fallback.
func (h *handlers) createAccount(ctx context.Context, in *Input, res *Response) error {
	if in.Identity == "" {
		return genattr.NewValidationError("connector.createAccount", errors.New("identity is required"))
	}

	identity, err := h.client.GetIdentityByName(ctx, in.Identity)
	if err != nil {
		if !errors.Is(err, genattr.ErrIdentityNotFound) {
			return err
		}
		identity, err = h.client.GetIdentity(ctx, in.Identity)
		if err != nil {
			return err
		}
	}

	account, err := h.assembleSingle(ctx, identity)
	if err != nil {
		return err
	}
	return res.Send(account)
}

// updateAccount applies attribute set operations to a freshly assembled
// account. Any non-set change rejects the whole call before anything is
// applied.
func (h *handlers) updateAccount(ctx context.Context, in *Input, res *Response) error {
	const op = "connector.updateAccount"

	for _, change := range in.Changes {
		if change.Op != ChangeOpSet {
			return genattr.NewUnsupportedError(op, genattr.ErrUnsupportedChange).
				WithContext(map[string]any{"op": change.Op, "attribute": change.Attribute})
		}
	}

	identity, err := h.lookupIdentity(ctx, in, op)
	if err != nil {
		return err
	}

	account, err := h.assembleSingle(ctx, identity)
	if err != nil {
		return err
	}
	for _, change := range in.Changes {
		account.Attributes[change.Attribute] = change.Value
	}
	return res.Send(account)
}

func (h *handlers) lookupIdentity(ctx context.Context, in *Input, op string) (*types.Identity, error) {
	if in.Identity == "" {
		return nil, genattr.NewValidationError(op, errors.New("identity is required"))
	}
	return h.client.GetIdentity(ctx, in.Identity)
}

// assembleSingle computes one identity's account outside a population run.
// There is no persisted counter or population-wide uniqueness context here:
// counters run ephemerally from zero, unique rules get a fresh value set (no
// cross-identity guarantee), and refresh is suppressed for counter and
// unique kinds so values already on the account are kept.
func (h *handlers) assembleSingle(ctx context.Context, identity *types.Identity) (types.Account, error) {
	rules := make(rule.Set, len(h.cfg.Attributes))
	copy(rules, h.cfg.Attributes)
	for i := range rules {
		if rules[i].Kind == rule.KindCounter || rules[i].Kind == rule.KindUnique {
			rules[i].Refresh = false
		}
	}

	counterFor := func(r *rule.Rule) func() int {
		switch r.Kind {
		case rule.KindCounter, rule.KindUnique, rule.KindUUID:
			return state.EphemeralCounter()
		default:
			return nil
		}
	}
	valuesFor := func(r *rule.Rule) *state.ValueSet {
		if r.Kind == rule.KindUnique {
			return state.NewValueSet()
		}
		return nil
	}

	existing, err := h.existingAttributes(ctx, identity.ID)
	if err != nil {
		return types.Account{}, err
	}

	return h.engine.Assemble(ctx, rules, identity, existing, counterFor, valuesFor)
}

// existingAttributes finds the identity's current account on the source, if
// it has one.
func (h *handlers) existingAttributes(ctx context.Context, identityID string) (map[string]any, error) {
	accounts, err := h.client.ListAccountsBySource(ctx, h.cfg.SourceID)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.IdentityID == identityID {
			return a.Attributes, nil
		}
	}
	return nil, nil
}

func (h *handlers) loadState(ctx context.Context, in *Input) (map[string]int, error) {
	if h.store != nil {
		seed, err := h.store.Load(ctx)
		if err != nil {
			return nil, genattr.NewStateError("connector.loadState", err)
		}
		return seed, nil
	}
	if len(in.State) == 0 {
		return nil, nil
	}
	return input.IntMap(in.State), nil
}
