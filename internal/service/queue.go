// internal/service/queue.go

package service

import (
	"sort"
	"time"

	"hotelac/internal/types"
)

// queueEntry 调度队列成员.
// servingSince 与 waitingSince 恰有一个非零值, 对应房间行的
// serving_start / waiting_start 列.
type queueEntry struct {
	roomID       int
	fanSpeed     types.Speed
	mode         types.Mode
	targetTemp   float64
	servingSince time.Time
	waitingSince time.Time
}

func (e *queueEntry) priority() int {
	return e.fanSpeed.Priority()
}

// scheduleQueues 服务/等待双队列, 只在持有引擎锁时访问
type scheduleQueues struct {
	capacity int
	serving  []*queueEntry
	waiting  []*queueEntry
}

func newScheduleQueues(capacity int) *scheduleQueues {
	if capacity < 1 {
		capacity = 1
	}
	return &scheduleQueues{capacity: capacity}
}

func (q *scheduleQueues) findServing(roomID int) *queueEntry {
	for _, e := range q.serving {
		if e.roomID == roomID {
			return e
		}
	}
	return nil
}

func (q *scheduleQueues) findWaiting(roomID int) *queueEntry {
	for _, e := range q.waiting {
		if e.roomID == roomID {
			return e
		}
	}
	return nil
}

func (q *scheduleQueues) find(roomID int) *queueEntry {
	if e := q.findServing(roomID); e != nil {
		return e
	}
	return q.findWaiting(roomID)
}

func (q *scheduleQueues) isServing(roomID int) bool {
	return q.findServing(roomID) != nil
}

// remove 把房间从两个队列中摘除, 保证全局至多一个成员
func (q *scheduleQueues) remove(roomID int) {
	q.serving = removeEntry(q.serving, roomID)
	q.waiting = removeEntry(q.waiting, roomID)
}

func removeEntry(queue []*queueEntry, roomID int) []*queueEntry {
	for i, e := range queue {
		if e.roomID == roomID {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}

// bestWaiting 返回应被提升的等待成员:
// 优先级降序, 等待更久者优先, 最后按房间号升序保证确定性
func (q *scheduleQueues) bestWaiting() *queueEntry {
	var best *queueEntry
	for _, e := range q.waiting {
		if best == nil || promoteBefore(e, best) {
			best = e
		}
	}
	return best
}

func promoteBefore(a, b *queueEntry) bool {
	if a.priority() != b.priority() {
		return a.priority() > b.priority()
	}
	if !a.waitingSince.Equal(b.waitingSince) {
		return a.waitingSince.Before(b.waitingSince)
	}
	return a.roomID < b.roomID
}

// victimServing 返回应被降级的服务成员:
// 优先级升序, 服务更久者优先, 最后按房间号升序
func (q *scheduleQueues) victimServing() *queueEntry {
	var victim *queueEntry
	for _, e := range q.serving {
		if victim == nil || demoteBefore(e, victim) {
			victim = e
		}
	}
	return victim
}

func demoteBefore(a, b *queueEntry) bool {
	if a.priority() != b.priority() {
		return a.priority() < b.priority()
	}
	if !a.servingSince.Equal(b.servingSince) {
		return a.servingSince.Before(b.servingSince)
	}
	return a.roomID < b.roomID
}

// rotationVictim 返回时间片轮转应降级的成员: 服务时长达到时间片
// 且优先级不高于 maxPriority 的成员中, 服务最久的一个
func (q *scheduleQueues) rotationVictim(now time.Time, sliceSeconds float64, maxPriority int) *queueEntry {
	var victim *queueEntry
	for _, e := range q.serving {
		if now.Sub(e.servingSince).Seconds() < sliceSeconds {
			continue
		}
		if e.priority() > maxPriority {
			continue
		}
		if victim == nil || rotateBefore(e, victim) {
			victim = e
		}
	}
	return victim
}

func rotateBefore(a, b *queueEntry) bool {
	if !a.servingSince.Equal(b.servingSince) {
		return a.servingSince.Before(b.servingSince)
	}
	if a.priority() != b.priority() {
		return a.priority() < b.priority()
	}
	return a.roomID < b.roomID
}

// sortedWaiting 按提升顺序返回等待队列副本, 监控展示用
func (q *scheduleQueues) sortedWaiting() []*queueEntry {
	out := make([]*queueEntry, len(q.waiting))
	copy(out, q.waiting)
	sort.Slice(out, func(i, j int) bool {
		return promoteBefore(out[i], out[j])
	})
	return out
}
