// Package votes reconciles a single vote action against the voter sets of a
// post or comment.
package votes

// Type is the kind of vote a user casts.
type Type string

const (
	Upvote   Type = "upvote"
	Downvote Type = "downvote"
	// None means the voter holds no vote on the entity.
	None Type = ""
)

// ParseType recognises "upvote" and "downvote".
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case Upvote, Downvote:
		return Type(s), true
	default:
		return None, false
	}
}

// Tally is the result of applying a vote.
type Tally struct {
	Upvotes   []string
	Downvotes []string
	// Score is always len(Upvotes) - len(Downvotes).
	Score int

	// Previous is the vote the voter held before, Current the one held after.
	Previous Type
	Current  Type
}

// Removed reports whether the voter held a vote before this action.
func (t Tally) Removed() bool {
	return t.Previous != None
}

// Apply removes voter from both sets and then re-adds them to the set named by
// voteType, unless they were already in that set. Casting the same vote twice
// clears it; casting the opposite vote switches it. Unrecognised vote types
// only clear the voter's existing vote.
//
// The input slices are not modified.
func Apply(upvotes, downvotes []string, voter string, voteType Type) Tally {
	hadUp := contains(upvotes, voter)
	hadDown := contains(downvotes, voter)

	up := without(upvotes, voter)
	down := without(downvotes, voter)

	t := Tally{}
	switch {
	case hadUp:
		t.Previous = Upvote
	case hadDown:
		t.Previous = Downvote
	}

	if voteType == Upvote && !hadUp {
		up = append(up, voter)
		t.Current = Upvote
	} else if voteType == Downvote && !hadDown {
		down = append(down, voter)
		t.Current = Downvote
	}

	t.Upvotes = up
	t.Downvotes = down
	t.Score = Score(up, down)
	return t
}

// Score derives the score from the voter sets.
func Score(upvotes, downvotes []string) int {
	return len(upvotes) - len(downvotes)
}

func contains(set []string, voter string) bool {
	for _, v := range set {
		if v == voter {
			return true
		}
	}
	return false
}

func without(set []string, voter string) []string {
	out := make([]string, 0, len(set)+1)
	for _, v := range set {
		if v != voter {
			out = append(out, v)
		}
	}
	return out
}
