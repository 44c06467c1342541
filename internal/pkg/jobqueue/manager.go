package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/alfredflix/alfredflix/app/models"
	"github.com/alfredflix/alfredflix/internal/pkg/database"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue         *Queue
	pendingTicker *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(2),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// EnqueueProvisionJob schedules a provisioning retry for a parked user.
// Satisfies the billing completion handler's ProvisionQueue.
func (m *Manager) EnqueueProvisionJob(userID uint) error {
	_, err := m.queue.EnqueueJob(JobTypeProvisionAccount, ProvisionAccountJobPayload{UserID: userID}.ToMap())
	return err
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	// Sweep for provisioning_pending users whose retry jobs were lost
	m.pendingTicker = time.NewTicker(15 * time.Minute)
	m.wg.Add(1)
	go m.pendingSweepWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.pendingTicker != nil {
		m.pendingTicker.Stop()
	}

	close(m.stopCh)
	m.running = false

	m.wg.Wait()
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// pendingSweepWorker re-enqueues provisioning for users that stayed pending.
// Job TTL is 24h; a crash between park and enqueue would otherwise strand
// the account forever.
func (m *Manager) pendingSweepWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Pending sweep worker stopping")
			return
		case <-m.pendingTicker.C:
			if err := m.sweepPendingOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Pending sweep error: %v", err)
			}
		}
	}
}

func (m *Manager) sweepPendingOnce() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	// Only re-enqueue when the queue is idle for this job type; a pending
	// job already covers the user.
	size, err := m.queue.GetQueueSize(context.Background())
	if err != nil || size > 0 {
		return err
	}

	var users []models.User
	if err := db.Where("status = ?", models.STATUS_PROVISIONING_PENDING).Limit(100).Find(&users).Error; err != nil {
		return err
	}

	for _, user := range users {
		if err := m.EnqueueProvisionJob(user.ID); err != nil {
			log.Errorf("[JobQueue Manager] Failed to re-enqueue provisioning for user %d: %v", user.ID, err)
		}
	}
	if len(users) > 0 {
		log.Infof("[JobQueue Manager] Re-enqueued provisioning for %d pending users", len(users))
	}
	return nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
