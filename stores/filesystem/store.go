package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/core"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) (*fsStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建产物目录失败: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

// path 只接受 ULID，避免 id 被用来访问目录外的文件。
func (s *fsStore) path(id string) (string, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrArtifactNotFound, id)
	}
	return filepath.Join(s.basePath, id+".json"), nil
}

func (s *fsStore) Put(ctx context.Context, artifact *core.Artifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("artifact cannot be nil")
	}
	id := ulid.Make().String()
	filePath, _ := s.path(id)
	log := logrus.WithFields(logrus.Fields{
		"artifact_id": id,
		"file_path":   filePath,
	})

	stored := *artifact
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		log.WithError(err).Error("Failed to marshal artifact")
		return "", err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		log.WithError(err).Error("Failed to write artifact")
		return "", err
	}

	log.WithField("data_length", len(stored.Data)).Info("Artifact stored")
	return id, nil
}

func (s *fsStore) Get(ctx context.Context, id string) (*core.Artifact, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"artifact_id": id, "file_path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Artifact file not found")
			return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, id)
		}
		log.WithError(err).Error("Failed to read artifact file")
		return nil, err
	}

	var artifact core.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		log.WithError(err).Error("Failed to unmarshal artifact")
		return nil, err
	}
	return &artifact, nil
}

func (s *fsStore) Release(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return nil
	}
	log := logrus.WithFields(logrus.Fields{"artifact_id": id, "file_path": filePath})

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Debug("Artifact already released")
			return nil
		}
		log.WithError(err).Error("Failed to delete artifact file")
		return err
	}
	log.Debug("Artifact released")
	return nil
}

func (s *fsStore) ReleaseSession(ctx context.Context, session string) (int, error) {
	return s.releaseWhere(ctx, func(m artifactMeta) bool { return m.Session == session })
}

func (s *fsStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	return s.releaseWhere(ctx, func(m artifactMeta) bool { return m.CreatedAt.Before(before) })
}

// artifactMeta 只解码清理时需要的字段，跳过文件内容。
type artifactMeta struct {
	Session   string    `json:"session"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *fsStore) releaseWhere(ctx context.Context, match func(artifactMeta) bool) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("读取产物目录失败: %w", err)
	}
	n := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		id, ok := strings.CutSuffix(entry.Name(), ".json")
		if !ok || entry.IsDir() {
			continue
		}
		filePath, err := s.path(id)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}
		var meta artifactMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			logrus.WithError(err).WithField("file_path", filePath).Warn("Skipping unreadable artifact")
			continue
		}
		if !match(meta) {
			continue
		}
		if err := s.Release(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
