package main

import (
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexsanderHamir/tlpool/internal/queue"
	"github.com/AlexsanderHamir/tlpool/pool"
)

// sample is pointer-free by design: RegisterType rejects any type with a
// pointer-shaped field, since slab storage is never scanned by the garbage
// collector (see pool/slab.go). Tag is a fixed-size byte array rather than
// a string for exactly that reason.
type sample struct {
	A, B, C int64
	Tag     [8]byte
}

// job names which worker should acquire a sample and which worker should
// eventually release it. The two differ for most jobs, so the demo
// exercises the pool's cross-thread ReturnBuffer path as well as the
// same-thread fast path.
type job struct {
	acquireOn int
	releaseOn int
}

func newRunCmd() *cobra.Command {
	var threads, perThread, capacity int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Acquire and release pool-backed samples across several OS threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(threads, perThread, capacity)
		},
	}

	cmd.Flags().IntVar(&threads, "threads", 4, "number of OS threads to pin workers to")
	cmd.Flags().IntVar(&perThread, "per-thread", 256, "acquire/release operations per thread")
	cmd.Flags().IntVar(&capacity, "capacity", 64, "slot capacity per thread's sample slab, to force overflow/housekeeping")

	return cmd
}

func runDemo(threads, perThread, capacity int) error {
	started := time.Now()
	manager := pool.NewManager()

	// work is the demo driver's own lock-free queue, deliberately separate
	// from the pool package's internal cross-thread ReturnBuffer: a caller
	// coordinating a fan-out of workers needs a queue of that shape
	// regardless of what the allocator does internally. Only the dispatch
	// goroutine below ever calls Dequeue, matching MPSC's single-consumer
	// contract; any number of goroutines could safely Enqueue onto it.
	work := queue.NewMPSC[job]()
	for i := 0; i < threads*perThread; i++ {
		work.Enqueue(job{acquireOn: i % threads, releaseOn: (i + 1) % threads})
	}

	acquireJobs := make([]chan job, threads)
	releaseJobs := make([]chan *sample, threads)
	for i := 0; i < threads; i++ {
		acquireJobs[i] = make(chan job, perThread)
		releaseJobs[i] = make(chan *sample, perThread)
	}

	go func() {
		for {
			j, ok := work.Dequeue()
			if !ok {
				break
			}
			acquireJobs[j.acquireOn] <- j
		}
		for _, ch := range acquireJobs {
			close(ch)
		}
	}()

	var acquireWG sync.WaitGroup
	acquireWG.Add(threads)
	for worker := 0; worker < threads; worker++ {
		go func(worker int) {
			defer acquireWG.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			p := manager.CurrentPool()
			p.SetPerObjectCount(capacity)
			pool.RegisterType[sample](p)

			for j := range acquireJobs[worker] {
				s, err := pool.Acquire[sample](p)
				if err != nil {
					log.Warn().Err(err).Int("worker", worker).Msg("acquire failed")
					continue
				}
				copy(s.Tag[:], "demo")
				releaseJobs[j.releaseOn] <- s
			}
		}(worker)
	}

	var releaseWG sync.WaitGroup
	releaseWG.Add(threads)
	for worker := 0; worker < threads; worker++ {
		go func(worker int) {
			defer releaseWG.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			manager.CurrentPool() // ensure this thread has its own Pool too
			for s := range releaseJobs[worker] {
				manager.Release(unsafe.Pointer(s))
			}
		}(worker)
	}

	acquireWG.Wait()
	for _, ch := range releaseJobs {
		close(ch)
	}
	releaseWG.Wait()

	sane := manager.ValidatePools()
	elapsed := time.Since(started)
	log.Info().Bool("validated", sane).Dur("elapsed", elapsed).Msg("guard regions checked")
	for _, line := range manager.Stats(true) {
		log.Info().Msg(line)
	}
	return nil
}
