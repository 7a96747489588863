package domain

// ResourceType names one kind of configuration object on the remote API.
type ResourceType string

const (
	TypeTenant          ResourceType = "tenant"
	TypeBranding        ResourceType = "branding"
	TypePrompts         ResourceType = "prompts"
	TypeEmailProvider   ResourceType = "emailProvider"
	TypeLogStreams      ResourceType = "logStreams"
	TypeRoles           ResourceType = "roles"
	TypeResourceServers ResourceType = "resourceServers"
	TypeClients         ResourceType = "clients"
	TypeActions         ResourceType = "actions"
)

func (rt ResourceType) String() string {
	return string(rt)
}
