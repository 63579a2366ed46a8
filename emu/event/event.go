package event

/*
 * SEL32 - Event scheduler
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Callback receives the integer argument given when the event was queued.
type Callback = func(iarg int)

// Events are kept in a list sorted by time, each holding the delta from
// the event before it.
type Event struct {
	time  int // Cycles after previous event
	owner any // Who registered the event
	cb    Callback
	iarg  int
	prev  *Event
	next  *Event
}

type eventList struct {
	head *Event
	tail *Event
	now  uint64 // Cycles since reset
}

var el eventList

// Queue cb to run after time cycles. A time of zero runs it now.
func AddEvent(owner any, cb Callback, time int, iarg int) {
	if time <= 0 {
		cb(iarg)
		return
	}

	ev := &Event{owner: owner, cb: cb, time: time, iarg: iarg}

	if el.head == nil {
		el.head = ev
		el.tail = ev
		return
	}

	for ptr := el.head; ptr != nil; ptr = ptr.next {
		if ev.time <= ptr.time {
			ptr.time -= ev.time
			ev.prev = ptr.prev
			ev.next = ptr
			ptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				el.head = ev
			}
			return
		}
		ev.time -= ptr.time
	}

	ev.prev = el.tail
	el.tail.next = ev
	el.tail = ev
}

// Remove the first event queued by owner with argument iarg.
func CancelEvent(owner any, iarg int) bool {
	for ptr := el.head; ptr != nil; ptr = ptr.next {
		if ptr.owner == owner && ptr.iarg == iarg {
			unlink(ptr)
			return true
		}
	}
	return false
}

// Remove every event queued by owner.
func CancelAll(owner any) int {
	n := 0
	ptr := el.head
	for ptr != nil {
		nxt := ptr.next
		if ptr.owner == owner {
			unlink(ptr)
			n++
		}
		ptr = nxt
	}
	return n
}

// Return number of cycles until owner's next event, -1 if none.
func Pending(owner any) int {
	t := 0
	for ptr := el.head; ptr != nil; ptr = ptr.next {
		t += ptr.time
		if ptr.owner == owner {
			return t
		}
	}
	return -1
}

// Check if anything is queued.
func AnyEvent() bool {
	return el.head != nil
}

// Number of cycles advanced since last reset.
func Now() uint64 {
	return el.now
}

// Drop all events and reset time.
func Reset() {
	el = eventList{}
}

// Advance time by t cycles, firing every event that comes due.
func Advance(t int) {
	el.now += uint64(t)
	ev := el.head
	if ev == nil {
		return
	}
	ev.time -= t
	for ev != nil && ev.time <= 0 {
		over := ev.time
		el.head = ev.next
		if el.head != nil {
			el.head.prev = nil
			// Carry any overrun into the next event.
			el.head.time += over
		} else {
			el.tail = nil
		}
		ev.cb(ev.iarg)
		ev = el.head
	}
}

func unlink(ev *Event) {
	if ev.next != nil {
		ev.next.time += ev.time
		ev.next.prev = ev.prev
	} else {
		el.tail = ev.prev
	}
	if ev.prev != nil {
		ev.prev.next = ev.next
	} else {
		el.head = ev.next
	}
	ev.next = nil
	ev.prev = nil
}
