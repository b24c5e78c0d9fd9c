package eval

import (
	"math/rand/v2"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/rushteam/movierec/core"
)

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// SplitByUsers 按用户而不是按行划分训练/测试集，同一用户的评分只会出现在一侧。
// 测试用户数为 floor(用户数 × testFraction)，相同 seed 结果相同。
func SplitByUsers(ratings []core.Rating, testFraction float64, seed uint64) (train, test []core.Rating) {
	users := lo.Uniq(lo.Map(ratings, func(r core.Rating, _ int) int64 { return r.UserID }))
	slices.Sort(users)

	rng := rand.New(rand.NewPCG(seed, seed))
	rng.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
	nTest := int(float64(len(users)) * testFraction)
	testUsers := mapset.NewThreadUnsafeSet(users[:nTest]...)

	for _, r := range ratings {
		if testUsers.Contains(r.UserID) {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return train, test
}
