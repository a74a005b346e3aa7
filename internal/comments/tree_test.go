package comments

import (
	"testing"
	"time"

	"kayinbooks/pkg/models"
)

func flatComment(id, parentID, body string, createdAt time.Time) models.Comment {
	return models.Comment{
		ID:         id,
		ReviewID:   "review-1",
		ParentID:   parentID,
		Body:       body,
		AuthorName: "reader",
		CreatedAt:  createdAt,
	}
}

func countNodes(forest []*models.ThreadedComment) int {
	n := 0
	for _, node := range forest {
		n += 1 + countNodes(node.Replies)
	}
	return n
}

func TestBuildTree_Empty(t *testing.T) {
	got := BuildTree(nil)
	if got == nil {
		t.Fatal("want empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestBuildTree_Nesting(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// newest-first input, as the store returns it:
	//   C (top-level, newest)
	//   B (reply to A)
	//   A (top-level, oldest)
	flat := []models.Comment{
		flatComment("c", "", "third", base.Add(2*time.Minute)),
		flatComment("b", "a", "reply to first", base.Add(time.Minute)),
		flatComment("a", "", "first", base),
	}

	forest := BuildTree(flat)

	if len(forest) != 2 {
		t.Fatalf("roots = %d, want 2", len(forest))
	}
	// input order preserved at root level: newest root first
	if forest[0].ID != "c" || forest[1].ID != "a" {
		t.Errorf("root order = [%s %s], want [c a]", forest[0].ID, forest[1].ID)
	}
	if len(forest[1].Replies) != 1 || forest[1].Replies[0].ID != "b" {
		t.Errorf("expected b nested under a, got %+v", forest[1].Replies)
	}
	if countNodes(forest) != len(flat) {
		t.Errorf("total nodes = %d, want %d", countNodes(forest), len(flat))
	}
}

func TestBuildTree_PreservesOrderPerLevel(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	flat := []models.Comment{
		flatComment("r3", "root", "newest reply", base.Add(3*time.Minute)),
		flatComment("r2", "root", "middle reply", base.Add(2*time.Minute)),
		flatComment("r1", "root", "oldest reply", base.Add(time.Minute)),
		flatComment("root", "", "the thread", base),
	}

	forest := BuildTree(flat)
	if len(forest) != 1 {
		t.Fatalf("roots = %d, want 1", len(forest))
	}

	replies := forest[0].Replies
	if len(replies) != 3 {
		t.Fatalf("replies = %d, want 3", len(replies))
	}
	for i, want := range []string{"r3", "r2", "r1"} {
		if replies[i].ID != want {
			t.Errorf("replies[%d] = %s, want %s", i, replies[i].ID, want)
		}
	}
}

func TestBuildTree_OrphanBecomesRoot(t *testing.T) {
	base := time.Now()

	flat := []models.Comment{
		flatComment("orphan", "deleted-parent", "still visible", base.Add(time.Minute)),
		flatComment("a", "", "top level", base),
	}

	forest := BuildTree(flat)
	if len(forest) != 2 {
		t.Fatalf("roots = %d, want 2 (orphan promoted)", len(forest))
	}
	if forest[0].ID != "orphan" {
		t.Errorf("forest[0] = %s, want orphan first (input order)", forest[0].ID)
	}
}

func TestBuildTree_DeepChain(t *testing.T) {
	base := time.Now()

	flat := []models.Comment{
		flatComment("d", "c", "", base.Add(3*time.Second)),
		flatComment("c", "b", "", base.Add(2*time.Second)),
		flatComment("b", "a", "", base.Add(time.Second)),
		flatComment("a", "", "", base),
	}

	forest := BuildTree(flat)
	if len(forest) != 1 {
		t.Fatalf("roots = %d, want 1", len(forest))
	}

	node := forest[0]
	for _, want := range []string{"b", "c", "d"} {
		if len(node.Replies) != 1 {
			t.Fatalf("replies under %s = %d, want 1", node.ID, len(node.Replies))
		}
		node = node.Replies[0]
		if node.ID != want {
			t.Fatalf("chain node = %s, want %s", node.ID, want)
		}
	}
	if len(node.Replies) != 0 {
		t.Errorf("leaf should have no replies, got %d", len(node.Replies))
	}
}

func TestBuildTree_RepliesNeverNil(t *testing.T) {
	forest := BuildTree([]models.Comment{flatComment("a", "", "", time.Now())})
	if forest[0].Replies == nil {
		t.Error("Replies must be an empty slice, not nil, so it serializes as []")
	}
}
