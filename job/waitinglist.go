package job

import "sync"

// locker is satisfied by both sync.Mutex and AndersonLock, letting a
// WaitingList pick either at construction, per spec.md §4.L.
type locker interface {
	Lock()
	Unlock()
}

// waitingList holds three intrusive doubly-linked priority queues of
// *fiberProps (one per Priority), per spec.md §4.H. All operations
// take the list's lock internally.
type waitingList struct {
	mu locker

	heads [numPriorities]*fiberProps
	tails [numPriorities]*fiberProps
	count int
}

func newWaitingList(useAnderson bool, workers int) *waitingList {
	var l locker
	if useAnderson {
		l = NewAndersonLock(workers)
	} else {
		l = &sync.Mutex{}
	}
	return &waitingList{mu: l}
}

// pushTail links p at the tail of its priority's queue.
func (w *waitingList) pushTail(p *fiberProps) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pushTailLocked(p)
}

func (w *waitingList) pushTailLocked(p *fiberProps) {
	pr := p.priority
	p.prev = w.tails[pr]
	p.next = nil
	if w.tails[pr] != nil {
		w.tails[pr].next = p
	} else {
		w.heads[pr] = p
	}
	w.tails[pr] = p
	w.count++
}

func (w *waitingList) unlinkLocked(p *fiberProps) {
	pr := p.priority
	if p.prev != nil {
		p.prev.next = p.next
	} else {
		w.heads[pr] = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	} else {
		w.tails[pr] = p.prev
	}
	p.prev, p.next = nil, nil
	w.count--
}

// pop implements the eligibility walk of spec.md §4.H: for each
// priority from High to Low, walk head to tail and return the first
// entry whose dependency counter is zero and whose signal (if any) is
// consumable. pending reports whether the list held any entries at
// all, even if none were eligible, so the worker loop knows whether to
// re-post a permit rather than block.
func (w *waitingList) pop() (p *fiberProps, pending bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for pr := 0; pr < numPriorities; pr++ {
		for cur := w.heads[pr]; cur != nil; cur = cur.next {
			pending = true
			if eligible(cur) {
				w.unlinkLocked(cur)
				return cur, true
			}
		}
	}
	return nil, pending
}

func eligible(p *fiberProps) bool {
	if p.fib == nil {
		return true // never scheduled: always ready to run for the first time
	}
	if p.fib.ChildCounter != nil && p.fib.ChildCounter.Load() != 0 {
		return false
	}
	if p.fib.SignalWaited != nil && !p.fib.SignalWaited.TryConsume() {
		return false
	}
	return true
}

// Len returns the total number of queued entries across all priorities.
func (w *waitingList) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
