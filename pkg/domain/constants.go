package domain

const (
	// KindGroup is the entity kind of entities that contain other entities.
	KindGroup = "Group"

	// AliasNamespace is the metadata namespace holding comma separated aliases.
	AliasNamespace = "synonyms"
)
