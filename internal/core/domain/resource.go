package domain

// PagingMode is the list pagination protocol of an endpoint.
type PagingMode string

const (
	PagingNone       PagingMode = "none"
	PagingPage       PagingMode = "page"
	PagingCheckpoint PagingMode = "checkpoint"
)

// Endpoint binds a resource type to its REST paths.
type Endpoint struct {
	Path string
	// ListKey is the response field holding the items of a paged list.
	// Object responses fall back to the type name; bare arrays need no key.
	ListKey      string
	Paging       PagingMode
	UpdateMethod string
}

// ShapeInput is handed to a ResourceConfig's Shape hook.
type ShapeInput struct {
	Desired  []DesiredItem
	Existing []ExistingItem
	Toggle   func(key string) bool
}

// ResourceConfig turns the generic engine into a handler for one resource
// type. Field paths are dotted ("sink.httpAuthorization").
type ResourceConfig struct {
	Type      ResourceType
	Singleton bool

	// IdentityFields defaults to ["name"]. More than one field forms a composite key.
	IdentityFields []string
	// IDField names the remote identifier, default "id".
	IDField string

	// ServerFields are computed by the backend and never compared or sent.
	ServerFields []string
	// CreateOnlyFields are sent on create but neither compared nor sent on update.
	CreateOnlyFields []string
	// SecretFields are echoed back obfuscated, so they never drive an update.
	SecretFields []string
	// DisallowedFields fail validation when present in the desired state.
	DisallowedFields []string

	// StrictNull makes an absent field differ from an explicit null or zero value.
	StrictNull bool
	// PatchUpdates sends only desired fields and compares only desired keys.
	PatchUpdates bool
	// CreateWhenAbsent marks a singleton that may not exist yet: a not-found
	// read means nothing is configured, and the first write is a create.
	CreateWhenAbsent bool

	// Schema returns a pointer to a struct the desired payload must decode into
	// and validate against. Nil disables schema checks.
	Schema func() any

	// Shape adjusts the desired items once existing state is known.
	Shape func(in ShapeInput) []DesiredItem

	Endpoint Endpoint
}

func (c ResourceConfig) IdentityPaths() []string {
	if len(c.IdentityFields) == 0 {
		return []string{KeyName}
	}
	return c.IdentityFields
}

func (c ResourceConfig) IDPath() string {
	if c.IDField == "" {
		return KeyID
	}
	return c.IDField
}
