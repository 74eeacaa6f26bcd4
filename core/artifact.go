package core

import (
	"context"
	"errors"
	"time"
)

// ErrArtifactNotFound 表示产物不存在或已被释放。
var ErrArtifactNotFound = errors.New("导出产物不存在或已释放")

type (
	// Artifact 是一次导出生成的文件，下载一次后即被释放。
	Artifact struct {
		ID        string    `json:"id"`
		Session   string    `json:"session,omitempty"`
		Filename  string    `json:"filename"`
		MIME      string    `json:"mime"`
		Data      []byte    `json:"data,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// ArtifactStore 暂存导出产物，直到被下载、所属会话结束或过期。
	ArtifactStore interface {
		// Put 保存产物并返回新分配的 id。
		Put(ctx context.Context, artifact *Artifact) (string, error)

		// Get 返回产物；不存在时返回 ErrArtifactNotFound。
		Get(ctx context.Context, id string) (*Artifact, error)

		// Release 删除产物，重复释放不是错误。
		Release(ctx context.Context, id string) error

		// ReleaseSession 删除某个会话的全部产物，返回删除的数量。
		ReleaseSession(ctx context.Context, session string) (int, error)

		// Sweep 删除创建时间早于 before 的产物，返回删除的数量。
		Sweep(ctx context.Context, before time.Time) (int, error)
	}
)

// Size 返回产物字节数。
func (a *Artifact) Size() int { return len(a.Data) }
