package assets

import "github.com/spaghettifunk/fakesss/engine/renderer/metadata"

type Loader interface {
	// `interface{}` here allows loaders to take various parameter types
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(*metadata.Resource) error
}
