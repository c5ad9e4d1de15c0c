package orderbookv1

import (
	"github.com/google/btree"
	"github.com/rimrakhimov/inno-dex/pkg/orderedset"
)

// SortedPriceIndex is a sorted associative index from price to the set of
// ids of all orders resting at that price. Prices are kept in a balanced
// tree, so min/max lookups and level insertion/removal are O(log n);
// ascending and descending traversal are first-class operations rather
// than a sort-on-read.
type SortedPriceIndex struct {
	tree   *btree.BTreeG[uint64]
	levels map[uint64]*orderedset.Set[OrderID]
}

// btreeDegree is the branching factor of the price tree. 32 keeps the
// tree shallow for realistic level counts.
const btreeDegree = 32

// NewSortedPriceIndex creates an empty index.
func NewSortedPriceIndex() *SortedPriceIndex {
	return &SortedPriceIndex{
		tree:   btree.NewOrderedG[uint64](btreeDegree),
		levels: make(map[uint64]*orderedset.Set[OrderID]),
	}
}

// Ensure returns the id set for the given price, creating an empty level
// if the price is not populated yet.
func (idx *SortedPriceIndex) Ensure(price uint64) *orderedset.Set[OrderID] {
	level, ok := idx.levels[price]
	if !ok {
		level = orderedset.New[OrderID]()
		idx.levels[price] = level
		idx.tree.ReplaceOrInsert(price)
	}
	return level
}

// Level returns the id set at the given price, if populated.
func (idx *SortedPriceIndex) Level(price uint64) (*orderedset.Set[OrderID], bool) {
	level, ok := idx.levels[price]
	return level, ok
}

// DropIfEmpty removes the level at the given price if it holds no ids.
func (idx *SortedPriceIndex) DropIfEmpty(price uint64) {
	level, ok := idx.levels[price]
	if !ok || level.Len() > 0 {
		return
	}

	delete(idx.levels, price)
	idx.tree.Delete(price)
}

// Best returns the maximum populated price when descending is true and the
// minimum otherwise. It fails with ErrEmptyIndex if no levels exist.
func (idx *SortedPriceIndex) Best(descending bool) (uint64, error) {
	var (
		price uint64
		ok    bool
	)
	if descending {
		price, ok = idx.tree.Max()
	} else {
		price, ok = idx.tree.Min()
	}
	if !ok {
		return 0, ErrEmptyIndex
	}
	return price, nil
}

// Levels calls fn for every populated price level in strict numeric order,
// descending or ascending, stopping early if fn returns false. The order
// is independent of level insertion order.
func (idx *SortedPriceIndex) Levels(descending bool, fn func(price uint64, ids *orderedset.Set[OrderID]) bool) {
	iter := func(price uint64) bool {
		return fn(price, idx.levels[price])
	}

	if descending {
		idx.tree.Descend(iter)
	} else {
		idx.tree.Ascend(iter)
	}
}

// Len returns the number of populated price levels.
func (idx *SortedPriceIndex) Len() int {
	return len(idx.levels)
}
