package tabular

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job là dữ liệu của một lần nhập file đang chờ xác nhận: bước xem trước
// trả handle (id + hạn) cho client, bước xác nhận đổi handle lấy lại dữ
// liệu. Không phụ thuộc session.
type Job struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expires_at"`

	Rows *Rows `json:"-"`
}

type JobStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	jobs map[string]*Job
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{ttl: ttl, jobs: map[string]*Job{}}
}

func (s *JobStore) Put(filename string, rows *Rows) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		ExpiresAt: time.Now().Add(s.ttl),
		Rows:      rows,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// dọn job quá hạn nhân tiện mỗi lần thêm
	now := time.Now()
	for id, j := range s.jobs {
		if now.After(j.ExpiresAt) {
			delete(s.jobs, id)
		}
	}
	s.jobs[job.ID] = job
	return job
}

// Take lấy và xoá job; quá hạn hoặc không tồn tại thì trả false.
func (s *JobStore) Take(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	delete(s.jobs, id)
	if time.Now().After(job.ExpiresAt) {
		return nil, false
	}
	return job, true
}
