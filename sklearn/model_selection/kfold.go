package model_selection

// CVFold represents a single fold in cross-validation
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter on top of Partition, so
// the n%k remainder rows never appear in any fold.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, randomSeed uint64) *KFold {
	if nSplits < 2 {
		nSplits = 5 // Default to 5-fold
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Assign returns the fold assignment of nSamples rows. Calls with the same
// seed return the same assignment.
func (kf *KFold) Assign(nSamples int) (FoldAssignment, error) {
	p := NewPartitioner(WithSeed(kf.RandomSeed))
	return p.Partition(nSamples, kf.NSplits, kf.Shuffle)
}

// Split generates train/test indices for each fold
func (kf *KFold) Split(nSamples int) ([]CVFold, error) {
	assignment, err := kf.Assign(nSamples)
	if err != nil {
		return nil, err
	}
	folds := make([]CVFold, assignment.Len())
	for i := range folds {
		train, test, err := assignment.TrainTest(i)
		if err != nil {
			return nil, err
		}
		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
	}
	return folds, nil
}
