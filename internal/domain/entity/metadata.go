package entity

// TokenMetadata is the off-chain JSON document a token URI points at.
type TokenMetadata struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Attributes  []TokenAttribute `json:"attributes,omitempty"`
}

// TokenAttribute is a single trait entry of TokenMetadata.
type TokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// MetadataUpdateRequest carries everything needed to reveal one token.
type MetadataUpdateRequest struct {
	TokenNo        string
	TokenAddress   string
	AssetDir       string
	KeyFilePath    string
	RandomTrait    bool
	CollectionName string
	Description    string
}
