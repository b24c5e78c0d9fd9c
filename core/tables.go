package core

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// RelevanceThreshold 评分 >= 4 视为相关（正样本）。
const RelevanceThreshold = 4.0

// Rating 是一条用户评分记录，历史与相关性标签的唯一来源。
type Rating struct {
	UserID    int64   `json:"user_id"`
	MovieID   int64   `json:"movie_id"`
	Value     float64 `json:"rating"`    // 1-5
	Timestamp int64   `json:"timestamp"` // unix 秒
}

// Relevant 返回 relevance 标签：评分 >= 4 为 1。
func (r Rating) Relevant() bool {
	return r.Value >= RelevanceThreshold
}

// Movie 是电影元数据。Genres 是与 Tables.GenreNames 等长的 0/1 指示向量。
type Movie struct {
	MovieID     int64     `json:"movie_id"`
	Title       string    `json:"title"`
	ReleaseYear int       `json:"release_year,omitempty"` // 0 表示未知
	Genres      []float64 `json:"genres"`
}

// HasReleaseYear 返回上映年份是否已知。
func (m *Movie) HasReleaseYear() bool {
	return m != nil && m.ReleaseYear > 0
}

// User 是用户的人口统计属性，冷启动画像按这些字段分组。
type User struct {
	UserID     int64  `json:"user_id"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	Occupation int    `json:"occupation"`
	ZipCode    string `json:"zipcode"`
}

// UserStats 是按用户聚合的离线统计快照。
type UserStats struct {
	UserID       int64   `json:"user_id"`
	AvgRating    float64 `json:"user_avg_rating"`
	RatingCount  float64 `json:"user_rating_count"`
	PositiveRate float64 `json:"user_positive_rate"`
	TenureDays   float64 `json:"user_tenure_days"`
}

// ItemStats 是按电影聚合的离线统计快照。
type ItemStats struct {
	MovieID      int64   `json:"movie_id"`
	AvgRating    float64 `json:"item_avg_rating"`
	RatingCount  float64 `json:"item_rating_count"`
	PositiveRate float64 `json:"item_positive_rate"`
	TenureDays   float64 `json:"item_tenure_days"`
}

// PopularityScore 返回 rating_count × avg_rating。
func (s *ItemStats) PopularityScore() float64 {
	if s == nil {
		return 0
	}
	return s.RatingCount * s.AvgRating
}

// UserGenreProfile 是按评分加权的用户类型偏好向量，维度与 Movie.Genres 一致，元素非负。
type UserGenreProfile struct {
	UserID int64     `json:"user_id"`
	Prefs  []float64 `json:"prefs"`
}

// Tables 是只读的参考表集合，进程启动时构建一次，之后在所有请求间共享。
// 所有字段构建后不再修改，因此可以在并发请求中无锁读取。
type Tables struct {
	GenreNames    []string
	Movies        map[int64]*Movie
	Users         map[int64]*User
	UserStats     map[int64]*UserStats
	ItemStats     map[int64]*ItemStats
	GenreProfiles map[int64]*UserGenreProfile

	ratings  []Rating
	byUser   map[int64][]Rating
	history  map[int64]mapset.Set[int64]
	movieIDs []int64
	userIDs  []int64
}

// TablesInput 是构建 Tables 的原始输入。
type TablesInput struct {
	GenreNames    []string
	Movies        []Movie
	Users         []User
	Ratings       []Rating
	UserStats     []UserStats
	ItemStats     []ItemStats
	GenreProfiles []UserGenreProfile
}

// NewTables 构建参考表并建立按用户的评分索引。
func NewTables(in TablesInput) *Tables {
	t := &Tables{
		GenreNames:    append([]string(nil), in.GenreNames...),
		Movies:        make(map[int64]*Movie, len(in.Movies)),
		Users:         make(map[int64]*User, len(in.Users)),
		UserStats:     make(map[int64]*UserStats, len(in.UserStats)),
		ItemStats:     make(map[int64]*ItemStats, len(in.ItemStats)),
		GenreProfiles: make(map[int64]*UserGenreProfile, len(in.GenreProfiles)),
		ratings:       append([]Rating(nil), in.Ratings...),
		byUser:        make(map[int64][]Rating),
	}
	for i := range in.Movies {
		m := in.Movies[i]
		t.Movies[m.MovieID] = &m
		t.movieIDs = append(t.movieIDs, m.MovieID)
	}
	sort.Slice(t.movieIDs, func(i, j int) bool { return t.movieIDs[i] < t.movieIDs[j] })
	for i := range in.Users {
		u := in.Users[i]
		t.Users[u.UserID] = &u
	}
	for i := range in.UserStats {
		s := in.UserStats[i]
		t.UserStats[s.UserID] = &s
	}
	for i := range in.ItemStats {
		s := in.ItemStats[i]
		t.ItemStats[s.MovieID] = &s
	}
	for i := range in.GenreProfiles {
		p := in.GenreProfiles[i]
		t.GenreProfiles[p.UserID] = &p
	}

	for _, r := range t.ratings {
		t.byUser[r.UserID] = append(t.byUser[r.UserID], r)
	}
	t.history = make(map[int64]mapset.Set[int64], len(t.byUser))
	for uid, rs := range t.byUser {
		set := mapset.NewThreadUnsafeSetWithSize[int64](len(rs))
		for _, r := range rs {
			set.Add(r.MovieID)
		}
		t.history[uid] = set
	}

	seen := make(map[int64]struct{})
	addUser := func(uid int64) {
		if _, ok := seen[uid]; ok {
			return
		}
		seen[uid] = struct{}{}
		t.userIDs = append(t.userIDs, uid)
	}
	for uid := range t.Users {
		addUser(uid)
	}
	for uid := range t.UserStats {
		addUser(uid)
	}
	sort.Slice(t.userIDs, func(i, j int) bool { return t.userIDs[i] < t.userIDs[j] })
	return t
}

// Ratings 返回全部评分（只读，调用方不得修改）。
func (t *Tables) Ratings() []Rating { return t.ratings }

// UserRatings 返回用户的评分历史（只读）。
func (t *Tables) UserRatings(userID int64) []Rating { return t.byUser[userID] }

// History 返回用户已评分电影集合 H，无历史时返回空集合。
func (t *Tables) History(userID int64) mapset.Set[int64] {
	if h, ok := t.history[userID]; ok {
		return h
	}
	return mapset.NewThreadUnsafeSet[int64]()
}

// MovieIDs 返回按 ID 升序的全部电影。
func (t *Tables) MovieIDs() []int64 { return t.movieIDs }

// UserIDs 返回按 ID 升序的全部已知用户（Users ∪ UserStats）。
func (t *Tables) UserIDs() []int64 { return t.userIDs }

// GenreDims 返回类型向量维度。
func (t *Tables) GenreDims() int { return len(t.GenreNames) }

// StatsProvider 提供不可变的参考表（评分、电影、用户/物品统计、类型偏好）。
// 加载发生在任何推荐调用之前，由外部协作方负责。
type StatsProvider interface {
	Tables(ctx context.Context) (*Tables, error)
}

// StaticProvider 直接返回内存中的 Tables。
type StaticProvider struct {
	T *Tables
}

func (p StaticProvider) Tables(context.Context) (*Tables, error) {
	return p.T, nil
}
