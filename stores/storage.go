package stores

import (
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/config"
	"github.com/ByLCY/mockup/core"
	"github.com/ByLCY/mockup/stores/filesystem"
	"github.com/ByLCY/mockup/stores/memory"
)

// Store is where export artifacts wait to be downloaded.
type Store interface {
	core.ArtifactStore
}

// GetStore selects the artifact store from configuration.
func GetStore(cfg config.Config) (Store, error) {
	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	var store Store
	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		fs, err := filesystem.NewStore(cfg.LocalStoragePath)
		if err != nil {
			return nil, err
		}
		store = fs
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
