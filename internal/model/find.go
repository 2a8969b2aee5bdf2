package model

// FindControls walks the tree depth-first, pre-order, and returns every
// node whose Name equals autoID and whose Text equals caption. An empty
// criterion is ignored; both empty matches nothing.
func FindControls(controls []Control, autoID, caption string) []Control {
	if autoID == "" && caption == "" {
		return nil
	}
	var result []Control
	WalkControls(controls, func(c *Control, _ int) bool {
		if autoID != "" && c.Name != autoID {
			return true
		}
		if caption != "" && c.Text != caption {
			return true
		}
		result = append(result, *c)
		return true
	})
	return result
}

// FindControlByHandle returns the first node with the given native handle.
func FindControlByHandle(controls []Control, handle int) *Control {
	if handle == 0 {
		return nil
	}
	var found *Control
	WalkControls(controls, func(c *Control, _ int) bool {
		if c.Handle == handle {
			found = c
			return false
		}
		return true
	})
	return found
}

// WalkControls visits nodes depth-first with their depth. Returning false
// from fn stops the walk.
func WalkControls(controls []Control, fn func(c *Control, depth int) bool) {
	walkControls(controls, 0, fn)
}

func walkControls(controls []Control, depth int, fn func(c *Control, depth int) bool) bool {
	for i := range controls {
		if !fn(&controls[i], depth) {
			return false
		}
		if !walkControls(controls[i].Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// CountControls returns the number of nodes in the tree.
func CountControls(controls []Control) int {
	n := 0
	WalkControls(controls, func(*Control, int) bool {
		n++
		return true
	})
	return n
}
