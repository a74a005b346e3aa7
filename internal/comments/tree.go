package comments

import "kayinbooks/pkg/models"

// BuildTree reshapes a flat, newest-first comment list into a reply forest.
//
// Two passes, O(n): first index every comment by id with an empty replies
// list, then attach each comment to its parent's replies, keeping the input
// order at every level. Because the input is newest-first, every reply list
// is newest-first too; the UI depends on that ordering staying stable.
//
// A comment whose parent id resolves to nothing (parent deleted out of
// band) is kept visible as a root rather than dropped. Cycles cannot occur:
// a parent id always references a comment that existed before the child was
// created, and the single attach pass never follows parent links.
func BuildTree(flat []models.Comment) []*models.ThreadedComment {
	nodes := make(map[string]*models.ThreadedComment, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &models.ThreadedComment{
			Comment: flat[i],
			Replies: []*models.ThreadedComment{},
		}
	}

	roots := make([]*models.ThreadedComment, 0)
	for i := range flat {
		node := nodes[flat[i].ID]
		parentID := flat[i].ParentID

		if parentID == "" {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[parentID]; ok {
			parent.Replies = append(parent.Replies, node)
		} else {
			// orphaned reply, surface it as a root
			roots = append(roots, node)
		}
	}

	return roots
}
