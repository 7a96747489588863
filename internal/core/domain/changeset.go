package domain

// Update pairs a desired payload with the remote item it replaces.
type Update struct {
	ID       string
	Key      Key
	Desired  Payload
	Existing Payload
}

// Conflict records an identity key declared more than once in the desired set.
type Conflict struct {
	Key         Key
	Occurrences int
}

// ChangeSet is the classification of one resource type's desired items
// against its existing items. The four sequences are disjoint.
type ChangeSet struct {
	Type     ResourceType
	Create   []DesiredItem
	Update   []Update
	Delete   []ExistingItem
	Conflict []Conflict
}

func (c ChangeSet) IsEmpty() bool {
	return len(c.Create) == 0 && len(c.Update) == 0 && len(c.Delete) == 0 && len(c.Conflict) == 0
}

func (c ChangeSet) Counts() Counts {
	return Counts{Create: len(c.Create), Update: len(c.Update), Delete: len(c.Delete)}
}

type Counts struct {
	Create int
	Update int
	Delete int
}

func (c Counts) Total() int {
	return c.Create + c.Update + c.Delete
}
