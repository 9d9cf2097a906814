package state

import "github.com/nathoo/nocturne/types"

// FindItem returns the index of the item with the exact name, or -1.
func FindItem(s *types.State, name string) int {
	for i, it := range s.Inventory {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// HasItem returns true if the inventory holds an item with the given name.
func HasItem(s *types.State, name string) bool {
	return FindItem(s, name) >= 0
}

// AddItem appends it unless an item with the same name is already held
// (first writer wins). Returns whether the item was added.
func AddItem(s *types.State, it types.Item) bool {
	if it.Name == "" || HasItem(s, it.Name) {
		return false
	}
	if it.Condition == "" {
		it.Condition = DefaultCondition
	}
	s.Inventory = append(s.Inventory, it)
	return true
}

// RemoveItem removes the item with the exact name. Returns false when the
// item is not held.
func RemoveItem(s *types.State, name string) bool {
	i := FindItem(s, name)
	if i < 0 {
		return false
	}
	s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
	return true
}

// ReplaceItem swaps the item named oldName for it, keeping its position.
// Returns false when oldName is not held. Replacing with a name another
// slot already uses is refused so names stay unique.
func ReplaceItem(s *types.State, oldName string, it types.Item) bool {
	i := FindItem(s, oldName)
	if i < 0 || it.Name == "" {
		return false
	}
	if j := FindItem(s, it.Name); j >= 0 && j != i {
		return false
	}
	if it.Condition == "" {
		it.Condition = DefaultCondition
	}
	s.Inventory[i] = it
	return true
}
