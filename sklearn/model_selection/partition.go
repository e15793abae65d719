// Package model_selection splits row indices into cross-validation folds and
// runs cross-validation of an external classifier over them.
package model_selection

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/pkg/log"
)

// FoldAssignment maps fold index 0..k-1 to the ordered row indices of that
// fold. An index appears at most once across all folds.
type FoldAssignment [][]int

// Len returns the number of folds.
func (a FoldAssignment) Len() int {
	return len(a)
}

// Indices returns every row index in fold order.
func (a FoldAssignment) Indices() []int {
	n := 0
	for _, fold := range a {
		n += len(fold)
	}
	out := make([]int, 0, n)
	for _, fold := range a {
		out = append(out, fold...)
	}
	return out
}

// TrainTest uses fold i as the test set and the remaining folds, in fold
// order, as the training set.
func (a FoldAssignment) TrainTest(i int) (train, test []int, err error) {
	if i < 0 || i >= len(a) {
		return nil, nil, errors.NewValidationError("fold", "out of range", i)
	}
	test = append([]int(nil), a[i]...)
	for j, fold := range a {
		if j != i {
			train = append(train, fold...)
		}
	}
	return train, test, nil
}

// Holdout uses the single fold of a as the test set and every other row in
// [0, total) as the training set, in row order. Fold-file assignments are
// evaluated this way.
func (a FoldAssignment) Holdout(total int) (train, test []int, err error) {
	if len(a) != 1 {
		return nil, nil, errors.NewInvalidPartitionError(total, len(a), "holdout needs exactly 1 fold")
	}
	inTest := make([]bool, total)
	for _, r := range a[0] {
		if r < 0 || r >= total {
			return nil, nil, errors.NewInvalidPartitionError(total, 1, fmt.Sprintf("row index %d out of range", r))
		}
		inTest[r] = true
	}
	for r, held := range inTest {
		if !held {
			train = append(train, r)
		}
	}
	if len(train) == 0 {
		return nil, nil, errors.NewInvalidPartitionError(total, 1, "holdout fold leaves no training rows")
	}
	return train, append([]int(nil), a[0]...), nil
}

// Partitioner splits row indices into folds. Shuffling draws from the
// partitioner's own generator, never from the global source, so a fixed
// seed gives reproducible assignments.
//
// A Partitioner is not safe for concurrent use.
type Partitioner struct {
	rng    *rand.Rand
	seed   uint64
	logger log.Logger
}

// PartitionerOption configures a Partitioner.
type PartitionerOption func(*Partitioner)

// WithSeed seeds the shuffle generator.
func WithSeed(seed uint64) PartitionerOption {
	return func(p *Partitioner) {
		p.seed = seed
		p.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand uses r as the shuffle generator.
func WithRand(r *rand.Rand) PartitionerOption {
	return func(p *Partitioner) {
		p.rng = r
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) PartitionerOption {
	return func(p *Partitioner) {
		p.logger = l
	}
}

// NewPartitioner creates a Partitioner. Without WithSeed or WithRand the
// generator is seeded from the clock.
func NewPartitioner(opts ...PartitionerOption) *Partitioner {
	p := &Partitioner{}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.seed = uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(p.seed, p.seed))
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("model_selection")
	}
	return p
}

// Partition splits the indices 0..totalElements-1 into groups contiguous
// blocks of totalElements/groups indices each. With randomize set, the
// order is shuffled first. The last totalElements%groups indices of the
// (possibly shuffled) order are dropped.
func (p *Partitioner) Partition(totalElements, groups int, randomize bool) (FoldAssignment, error) {
	if groups < 1 {
		return nil, errors.NewInvalidPartitionError(totalElements, groups, "groups must be at least 1")
	}
	if totalElements < 1 {
		return nil, errors.NewInvalidPartitionError(totalElements, groups, "totalElements must be at least 1")
	}

	order := make([]int, totalElements)
	for i := range order {
		order[i] = i
	}
	if randomize {
		p.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	size := totalElements / groups
	folds := make(FoldAssignment, groups)
	for g := range folds {
		folds[g] = append(make([]int, 0, size), order[g*size:(g+1)*size]...)
	}

	dropped := totalElements - groups*size
	p.logger.Debug("Partitioned dataset",
		log.OperationKey, log.OperationPartition,
		log.SamplesKey, totalElements,
		log.GroupsKey, groups,
		log.FoldSizeKey, size,
		log.RandomizeKey, randomize,
		log.DroppedKey, dropped,
	)
	if size == 0 {
		p.logger.Warn("Every fold is empty",
			log.SamplesKey, totalElements,
			log.GroupsKey, groups,
		)
	}
	return folds, nil
}

// PartitionFromFile wraps rows, typically read from a fold file, as a single
// fold in the given order.
func PartitionFromFile(rows []int) (FoldAssignment, error) {
	if len(rows) == 0 {
		return nil, errors.NewInvalidPartitionError(0, 1, "fold file lists no rows")
	}
	seen := make(map[int]struct{}, len(rows))
	for _, r := range rows {
		if r < 0 {
			return nil, errors.NewInvalidPartitionError(len(rows), 1, "negative row index in fold file")
		}
		if _, dup := seen[r]; dup {
			return nil, errors.NewInvalidPartitionError(len(rows), 1, "duplicate row index in fold file")
		}
		seen[r] = struct{}{}
	}
	return FoldAssignment{append([]int(nil), rows...)}, nil
}
