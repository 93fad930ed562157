package ecs

import "iter"

// column is a type-erased component store with stable slot indices.
type column interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Compact() map[int]int
	Iter() iter.Seq[int]
}

const columnBlockSize = 64

// typedColumn stores components of type T in fixed-size blocks. Deleting
// leaves a hole that a later Append reuses, so slot indices stay stable until
// Compact runs.
type typedColumn[T any] struct {
	blocks    [][columnBlockSize]T
	filled    [][columnBlockSize]bool
	freeSlots []int
	nextIndex int
}

// Append adds a component to the column and returns its slot index.
func (c *typedColumn[T]) Append(item any) int {
	var concreteItem T
	if ptr, ok := item.(*T); ok {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return -1 // invalid type
	}

	if len(c.freeSlots) > 0 {
		index := c.freeSlots[len(c.freeSlots)-1]
		c.freeSlots = c.freeSlots[:len(c.freeSlots)-1]

		blockIdx := index / columnBlockSize
		slotIdx := index % columnBlockSize

		c.blocks[blockIdx][slotIdx] = concreteItem
		c.filled[blockIdx][slotIdx] = true
		return index
	}

	index := c.nextIndex
	c.nextIndex++

	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize

	if blockIdx >= len(c.blocks) {
		c.blocks = append(c.blocks, [columnBlockSize]T{})
		c.filled = append(c.filled, [columnBlockSize]bool{})
	}

	c.blocks[blockIdx][slotIdx] = concreteItem
	c.filled[blockIdx][slotIdx] = true
	return index
}

// Get returns a pointer to the component at the given slot, or nil.
func (c *typedColumn[T]) Get(index int) any {
	if index < 0 {
		return nil
	}

	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return nil
	}

	if !c.filled[blockIdx][slotIdx] {
		return nil
	}

	return &c.blocks[blockIdx][slotIdx]
}

// Delete marks a slot as empty and zeroes the value.
func (c *typedColumn[T]) Delete(index int) {
	if index < 0 {
		return
	}

	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return
	}

	if c.filled[blockIdx][slotIdx] {
		c.filled[blockIdx][slotIdx] = false
		var zero T
		c.blocks[blockIdx][slotIdx] = zero
		c.freeSlots = append(c.freeSlots, index)
	}
}

// Has checks if a component exists at the given slot.
func (c *typedColumn[T]) Has(index int) bool {
	if index < 0 {
		return false
	}

	blockIdx := index / columnBlockSize
	slotIdx := index % columnBlockSize

	if blockIdx >= len(c.blocks) {
		return false
	}

	return c.filled[blockIdx][slotIdx]
}

// Compact squeezes out empty slots and returns the old-to-new index mapping.
func (c *typedColumn[T]) Compact() map[int]int {
	indexMap := make(map[int]int)
	writePos := 0

	totalComponents := c.nextIndex - len(c.freeSlots)
	if c.nextIndex == 0 || totalComponents == 0 {
		c.blocks = make([][columnBlockSize]T, 1)
		c.filled = make([][columnBlockSize]bool, 1)
		c.freeSlots = nil
		c.nextIndex = 0
		return indexMap
	}

	numNewBlocks := (totalComponents + columnBlockSize - 1) / columnBlockSize
	newBlocks := make([][columnBlockSize]T, numNewBlocks)
	newFilled := make([][columnBlockSize]bool, numNewBlocks)

	for readIdx := 0; readIdx < c.nextIndex; readIdx++ {
		readBlockIdx := readIdx / columnBlockSize
		readSlotIdx := readIdx % columnBlockSize

		if c.filled[readBlockIdx][readSlotIdx] {
			indexMap[readIdx] = writePos

			writeBlockIdx := writePos / columnBlockSize
			writeSlotIdx := writePos % columnBlockSize

			newBlocks[writeBlockIdx][writeSlotIdx] = c.blocks[readBlockIdx][readSlotIdx]
			newFilled[writeBlockIdx][writeSlotIdx] = true

			writePos++
		}
	}

	c.blocks = newBlocks
	c.filled = newFilled
	c.freeSlots = nil
	c.nextIndex = writePos

	return indexMap
}

// Iter yields the indices of live slots in ascending order.
func (c *typedColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.nextIndex; i++ {
			blockIdx := i / columnBlockSize
			slotIdx := i % columnBlockSize

			if blockIdx >= len(c.filled) {
				continue
			}

			if c.filled[blockIdx][slotIdx] {
				if !yield(i) {
					return
				}
			}
		}
	}
}
