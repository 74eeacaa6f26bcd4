// Package export 编排一次导出：取快照、预加载 logo、绘制、序列化、暂存产物并通知结果。
// 同一 Pipeline 上同时只允许一个导出进行。
package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/mockup/assets"
	"github.com/ByLCY/mockup/core"
	"github.com/ByLCY/mockup/mockup"
	"github.com/ByLCY/mockup/renderer"
)

var (
	// ErrBusy 表示已有导出在进行，本次调用不做任何事。
	ErrBusy = errors.New("已有导出正在进行")
	// ErrAsset 表示 logo 等资源加载失败。
	ErrAsset = errors.New("资源加载失败")
	// ErrEnvironment 表示绘制环境不可用。
	ErrEnvironment = errors.New("绘制环境不可用")
	// ErrSerialize 表示生成文件失败。
	ErrSerialize = errors.New("生成文件失败")
)

// ArtifactType 是导出文件名的前缀。
const ArtifactType = "mockup"

// Notifier 接收每次导出尝试的结果（忙碌时的空操作除外）。
type Notifier interface {
	Success(message string)
	Failure(message string, err error)
}

// Options configures a Pipeline.
type Options struct {
	Loader   assets.Loader
	Renderer renderer.Renderer
	Store    core.ArtifactStore // 为 nil 时产物只返回不暂存
	Notifier Notifier
	Session  string
}

// Pipeline 串联导出各步骤。
type Pipeline struct {
	busy atomic.Bool
	opts Options
	log  *logrus.Entry
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		opts: opts,
		log:  logrus.WithField("session", opts.Session),
	}
}

// Busy 报告是否有导出正在进行。
func (p *Pipeline) Busy() bool { return p.busy.Load() }

// Export 以调用时传入的快照（值拷贝）导出 format 格式的文件。
// 已有导出进行时立即返回 ErrBusy，不通知也不改变任何状态。
func (p *Pipeline) Export(ctx context.Context, snap mockup.Snapshot, format renderer.Format) (*core.Artifact, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.busy.Store(false)

	filename := Filename(format, snap.Name)
	log := p.log.WithFields(logrus.Fields{"format": format, "filename": filename})
	log.Info("export started")
	start := time.Now()

	artifact, err := p.run(ctx, snap, format, filename)
	if err != nil {
		log.WithError(err).Warn("export failed")
		p.failure(fmt.Sprintf("导出 %s 失败", strings.ToUpper(string(format))), err)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"artifact_id": artifact.ID,
		"bytes":       artifact.Size(),
		"elapsed":     time.Since(start).String(),
	}).Info("export finished")
	p.success(fmt.Sprintf("已导出 %s", filename))
	return artifact, nil
}

func (p *Pipeline) run(ctx context.Context, snap mockup.Snapshot, format renderer.Format, filename string) (artifact *core.Artifact, err error) {
	if p.opts.Renderer == nil {
		return nil, fmt.Errorf("%w: 未配置渲染器", ErrEnvironment)
	}
	if _, perr := renderer.ParseFormat(string(format)); perr != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvironment, perr)
	}

	job := renderer.Job{Snapshot: snap}
	if snap.Logo.Src != "" {
		if p.opts.Loader == nil {
			return nil, fmt.Errorf("%w: 未配置资源加载器", ErrAsset)
		}
		img, lerr := p.opts.Loader.Load(ctx, snap.Logo.Src)
		if lerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrAsset, lerr)
		}
		job.Logo = img
	}

	data, err := p.render(job, format)
	if err != nil {
		return nil, err
	}

	artifact = &core.Artifact{
		Session:   p.opts.Session,
		Filename:  filename,
		MIME:      format.MIME(),
		Data:      data,
		CreatedAt: time.Now(),
	}
	if p.opts.Store != nil {
		id, serr := p.opts.Store.Put(ctx, artifact)
		if serr != nil {
			return nil, fmt.Errorf("%w: 暂存产物失败: %v", ErrSerialize, serr)
		}
		artifact.ID = id
	}
	return artifact, nil
}

// render 调用渲染器并把错误归类；渲染器 panic 也按序列化错误处理。
func (p *Pipeline) render(job renderer.Job, format renderer.Format) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrSerialize, r)
		}
	}()
	data, err = p.opts.Renderer.Render(job, format)
	switch {
	case err == nil && len(data) == 0:
		return nil, fmt.Errorf("%w: 输出为空", ErrSerialize)
	case err == nil:
		return data, nil
	case errors.Is(err, renderer.ErrUnavailable), errors.Is(err, renderer.ErrUnsupportedFormat):
		return nil, fmt.Errorf("%w: %v", ErrEnvironment, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
}

func (p *Pipeline) success(msg string) {
	if p.opts.Notifier != nil {
		p.opts.Notifier.Success(msg)
	}
}

func (p *Pipeline) failure(msg string, err error) {
	if p.opts.Notifier != nil {
		p.opts.Notifier.Failure(msg, err)
	}
}

// 保留任意语言的字母与数字，其余字符折叠为一个连字符。
var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Filename 返回 {类型}-{名称或 brand}.{扩展名}。
func Filename(format renderer.Format, name string) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "brand"
	}
	return fmt.Sprintf("%s-%s.%s", ArtifactType, slug, format.Ext())
}
