package scheduler

// indexer gives a unique index to a combination of decision variable's attributes and vice versa.
// Indexes start at 1 (DIMACS convention).
type indexer interface {
	// Returns a unique index to a combination of decision variable's attributes
	Index(class, day, slot, subject, faculty int) int
	// Returns a combination of decision variable's attributes from a unique index
	Attributes(index int) (class, day, slot, subject, faculty int)
	// Returns the number of indexes
	Size() int
}

func newIndexer(classes, days, slots, subjects, faculties int) indexer {
	return &indexerImplementation{
		classes:   classes,
		days:      days,
		slots:     slots,
		subjects:  subjects,
		faculties: faculties,
	}
}

type indexerImplementation struct {
	classes   int
	days      int
	slots     int
	subjects  int
	faculties int
}

func (indexer *indexerImplementation) Index(class, day, slot, subject, faculty int) int {
	return slot + indexer.slots*day + indexer.slots*indexer.days*subject + indexer.slots*indexer.days*indexer.subjects*faculty + indexer.slots*indexer.days*indexer.subjects*indexer.faculties*class + 1
}

func (indexer *indexerImplementation) Attributes(index int) (class, day, slot, subject, faculty int) {
	index = index - 1
	slot = index % indexer.slots
	index = index / indexer.slots

	day = index % indexer.days
	index = index / indexer.days

	subject = index % indexer.subjects
	index = index / indexer.subjects

	faculty = index % indexer.faculties
	index = index / indexer.faculties

	class = index % indexer.classes

	return class, day, slot, subject, faculty
}

func (indexer *indexerImplementation) Size() int {
	return indexer.classes * indexer.days * indexer.slots * indexer.subjects * indexer.faculties
}
