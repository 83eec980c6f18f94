package models

// CategoryQuery selects the asset category for every /:category route.
// When AssetType is empty the path segment is used instead.
type CategoryQuery struct {
	AssetType string `form:"asset_type"`
}
