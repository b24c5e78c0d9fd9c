package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/log"
)

// DefaultSnapshotKey 是快照在 Store 中的默认 key
const DefaultSnapshotKey = "movierec:snapshot"

// Snapshot 是参考表的 JSON 快照。
// 统计表可以省略，省略时由 BuildTables 从评分推导（三张统计表需同时省略）。
type Snapshot struct {
	GenreNames    []string                `json:"genre_names"`
	Movies        []core.Movie            `json:"movies"`
	Users         []core.User             `json:"users"`
	Ratings       []core.Rating           `json:"ratings"`
	UserStats     []core.UserStats        `json:"user_stats,omitempty"`
	ItemStats     []core.ItemStats        `json:"item_stats,omitempty"`
	GenreProfiles []core.UserGenreProfile `json:"genre_profiles,omitempty"`
}

// Tables 把快照转换为只读参考表。
func (s *Snapshot) Tables() *core.Tables {
	if len(s.UserStats) == 0 && len(s.ItemStats) == 0 && len(s.GenreProfiles) == 0 {
		return BuildTables(s.GenreNames, s.Movies, s.Users, s.Ratings)
	}
	return core.NewTables(core.TablesInput{
		GenreNames:    s.GenreNames,
		Movies:        s.Movies,
		Users:         s.Users,
		Ratings:       s.Ratings,
		UserStats:     s.UserStats,
		ItemStats:     s.ItemStats,
		GenreProfiles: s.GenreProfiles,
	})
}

// Validate 检查类型向量维度一致。
func (s *Snapshot) Validate() error {
	dims := len(s.GenreNames)
	for _, m := range s.Movies {
		if len(m.Genres) != dims {
			return fmt.Errorf("movie %d: %d genre flags, want %d", m.MovieID, len(m.Genres), dims)
		}
	}
	for _, p := range s.GenreProfiles {
		if len(p.Prefs) != dims {
			return fmt.Errorf("user %d: %d genre prefs, want %d", p.UserID, len(p.Prefs), dims)
		}
	}
	return nil
}

func decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &s, nil
}

// LoadSnapshotFile 从 JSON 文件读取快照。
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return decode(data)
}

// SaveSnapshotFile 把快照写为 JSON 文件。
func SaveSnapshotFile(path string, s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveSnapshot 把快照写入 Store。
func SaveSnapshot(ctx context.Context, store core.Store, key string, s *Snapshot) error {
	if key == "" {
		key = DefaultSnapshotKey
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return store.Set(ctx, key, data)
}

// SnapshotProvider 从 Store 读取快照，实现 core.StatsProvider。
type SnapshotProvider struct {
	Store core.Store
	Key   string
}

func (p *SnapshotProvider) Tables(ctx context.Context) (*core.Tables, error) {
	key := p.Key
	if key == "" {
		key = DefaultSnapshotKey
	}
	data, err := p.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q from %s: %w", key, p.Store.Name(), err)
	}
	s, err := decode(data)
	if err != nil {
		return nil, err
	}
	t := s.Tables()
	log.Logger().Info("reference tables loaded",
		zap.String("store", p.Store.Name()),
		zap.Int("movies", len(t.Movies)),
		zap.Int("users", len(t.UserIDs())),
		zap.Int("ratings", len(t.Ratings())))
	return t, nil
}

// FileProvider 从 JSON 文件读取快照，实现 core.StatsProvider。
type FileProvider struct {
	Path string
}

func (p FileProvider) Tables(context.Context) (*core.Tables, error) {
	s, err := LoadSnapshotFile(p.Path)
	if err != nil {
		return nil, err
	}
	return s.Tables(), nil
}
