package coldstart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/movierec/core"
)

// DemoKey 是人口统计画像的分组键。
type DemoKey struct {
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	Occupation int    `json:"occupation"`
}

type genderAge struct {
	gender string
	age    int
}

// DemographicProfile 是 (gender, age, occupation) 分组下的高分电影，最多 50 部，按分数降序。
type DemographicProfile struct {
	DemoKey
	MovieIDs []int64 `json:"movie_ids"`
}

// RegionalProfile 是大区下的高分电影，最多 100 部，按分数降序。
type RegionalProfile struct {
	Region   Region  `json:"region"`
	NUsers   int     `json:"n_users"`
	MovieIDs []int64 `json:"movie_ids"`
}

// Profiles 是离线构建的冷启动画像集合，构建后只读。
type Profiles struct {
	// Demographic 按 (gender, age, occupation) 升序
	Demographic []DemographicProfile `json:"demographic"`
	// Regional 按大区名升序
	Regional []RegionalProfile `json:"regional"`
	// Popular 是按 item_rating_count 降序的全部电影，兜底使用
	Popular []int64 `json:"popular"`

	exact    map[DemoKey]*DemographicProfile
	relaxed  map[genderAge][]*DemographicProfile
	regional map[Region]*RegionalProfile
}

// index 建立查询索引。relaxed 中的画像保持 Demographic 的顺序，即按职业升序。
func (p *Profiles) index() {
	p.exact = make(map[DemoKey]*DemographicProfile, len(p.Demographic))
	p.relaxed = make(map[genderAge][]*DemographicProfile)
	for i := range p.Demographic {
		d := &p.Demographic[i]
		p.exact[d.DemoKey] = d
		ga := genderAge{d.Gender, d.Age}
		p.relaxed[ga] = append(p.relaxed[ga], d)
	}
	p.regional = make(map[Region]*RegionalProfile, len(p.Regional))
	for i := range p.Regional {
		r := &p.Regional[i]
		p.regional[r.Region] = r
	}
}

// Exact 返回精确匹配的画像。
func (p *Profiles) Exact(key DemoKey) (*DemographicProfile, bool) {
	d, ok := p.exact[key]
	return d, ok
}

// Region 返回大区画像。
func (p *Profiles) Region(r Region) (*RegionalProfile, bool) {
	rp, ok := p.regional[r]
	return rp, ok
}

// ProfilesKey 是冷启动画像在 Store 中的 key
const ProfilesKey = "movierec:coldstart:profiles"

// SaveProfiles 把画像序列化为 JSON 写入 Store。
func SaveProfiles(ctx context.Context, store core.Store, p *Profiles) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	return store.Set(ctx, ProfilesKey, data)
}

// LoadProfiles 从 Store 读取画像。
func LoadProfiles(ctx context.Context, store core.Store) (*Profiles, error) {
	data, err := store.Get(ctx, ProfilesKey)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	var p Profiles
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profiles: %w", err)
	}
	p.index()
	return &p, nil
}
