// Package syncer partitions the files on disk against the files a
// database already knows into the four sync actions: insert, update
// (a rename of unchanged content), delete, and no-op. Identity is the
// content hash, so a moved file costs one path update instead of a
// delete plus a reparse.
package syncer

// FileMeta identifies one file by path and content hash.
type FileMeta struct {
	DiskPath  string
	StorePath string // path as recorded in the database
	Hash      string
	Size      int64
}

// Plan holds the partitioned sync actions. Every disk file and every
// stored file lands in exactly one partition.
type Plan struct {
	Inserts []FileMeta // on disk, hash unknown to the store
	Updates []FileMeta // same hash, different path: rename in place
	Deletes []FileMeta // in the store, no longer on disk
	Keeps   []FileMeta // same path and hash
}

type stored struct {
	meta    FileMeta
	claimed bool
}

// Classify joins disk against store on (path, hash).
//
// Matching is by hash, so two distinct files with colliding hashes
// would be misread as a rename. With a cryptographic hash that case is
// not handled.
func Classify(disk, store []FileMeta) Plan {
	byPath := make(map[string]*stored, len(store))
	byHash := make(map[string][]*stored, len(store))
	for _, f := range store {
		s := &stored{meta: f}
		byPath[f.StorePath] = s
		byHash[f.Hash] = append(byHash[f.Hash], s)
	}

	// Exact (path, hash) matches claim their rows first so a rename
	// elsewhere cannot steal an untouched file's row.
	var plan Plan
	var rest []FileMeta
	for _, f := range disk {
		if s, ok := byPath[f.DiskPath]; ok && !s.claimed && s.meta.Hash == f.Hash {
			s.claimed = true
			f.StorePath = s.meta.StorePath
			plan.Keeps = append(plan.Keeps, f)
			continue
		}
		rest = append(rest, f)
	}

	for _, f := range rest {
		// An unclaimed stored file with the same content is this disk
		// file under its old name.
		if renamed := claim(byHash[f.Hash]); renamed != nil {
			renamed.claimed = true
			f.StorePath = renamed.meta.StorePath
			plan.Updates = append(plan.Updates, f)
			continue
		}
		f.StorePath = ""
		plan.Inserts = append(plan.Inserts, f)
	}

	for _, f := range store {
		if !byPath[f.StorePath].claimed {
			plan.Deletes = append(plan.Deletes, f)
		}
	}
	return plan
}

// claim returns the first unclaimed candidate, or nil.
func claim(candidates []*stored) *stored {
	for _, c := range candidates {
		if !c.claimed {
			return c
		}
	}
	return nil
}
