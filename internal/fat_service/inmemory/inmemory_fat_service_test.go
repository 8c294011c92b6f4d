package inmemory

import (
	"errors"
	"testing"

	bs "github.com/AnishMulay/fatstore/internal/block_service"
	fat "github.com/AnishMulay/fatstore/internal/fat_service"
	"github.com/AnishMulay/fatstore/internal/log_service/zaplog"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func newTestFAT(t *testing.T, capacity int) *InMemoryFATService {
	t.Helper()
	s, err := NewInMemoryFATService(capacity, zaplog.NewFromLogger(zap.NewNop(), "test"))
	if err != nil {
		t.Fatalf("NewInMemoryFATService() error = %v", err)
	}
	return s
}

// link builds a chain through blocks in order.
func link(t *testing.T, s *InMemoryFATService, blocks ...int) {
	t.Helper()
	for i, b := range blocks {
		if err := s.Claim(b); err != nil {
			t.Fatalf("Claim(%d) error = %v", b, err)
		}
		if i > 0 {
			if err := s.Extend(blocks[i-1], b); err != nil {
				t.Fatalf("Extend(%d, %d) error = %v", blocks[i-1], b, err)
			}
		}
	}
}

func TestInMemoryFATService_InitiallyFree(t *testing.T) {
	s := newTestFAT(t, 16)
	if got := s.FreeCount(); got != 16 {
		t.Errorf("FreeCount() = %d, want 16", got)
	}
	for i := 0; i < s.Len(); i++ {
		if !s.IsFree(i) {
			t.Fatalf("entry %d not free after init", i)
		}
	}
	if s.IsFree(16) {
		t.Errorf("IsFree(out of range) = true")
	}
}

func TestInMemoryFATService_Claim(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		setupFn func(*InMemoryFATService)
		wantErr error
	}{
		{name: "claim free block", index: 3},
		{
			name:    "claim claimed block",
			index:   3,
			setupFn: func(s *InMemoryFATService) { _ = s.Claim(3) },
			wantErr: fat.ErrBlockInUse,
		},
		{name: "claim out of range", index: 8, wantErr: fat.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestFAT(t, 8)
			if tt.setupFn != nil {
				tt.setupFn(s)
			}

			err := s.Claim(tt.index)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Claim() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			e, _ := s.Entry(tt.index)
			if !e.IsEnd() {
				t.Errorf("claimed entry = %s, want eoc", e)
			}
			if got := s.FreeCount(); got != 7 {
				t.Errorf("FreeCount() = %d, want 7", got)
			}
		})
	}
}

func TestInMemoryFATService_Extend(t *testing.T) {
	s := newTestFAT(t, 8)
	link(t, s, 0, 1)

	if e, _ := s.Entry(0); e != fat.Next(1) {
		t.Errorf("FAT[0] = %s, want next(1)", e)
	}
	if err := s.Extend(1, bs.NoBlock); err != nil {
		t.Fatalf("Extend(1, NoBlock) error = %v", err)
	}
	if e, _ := s.Entry(1); !e.IsEnd() {
		t.Errorf("FAT[1] = %s, want eoc", e)
	}
	if err := s.Extend(1, 8); !errors.Is(err, fat.ErrOutOfRange) {
		t.Errorf("Extend to out of range error = %v, want %v", err, fat.ErrOutOfRange)
	}
	if err := s.Extend(-2, 1); !errors.Is(err, fat.ErrOutOfRange) {
		t.Errorf("Extend from out of range error = %v, want %v", err, fat.ErrOutOfRange)
	}
}

func TestInMemoryFATService_Walk(t *testing.T) {
	tests := []struct {
		name    string
		head    int
		setupFn func(*testing.T, *InMemoryFATService)
		want    []int
		wantErr error
	}{
		{
			name: "empty file",
			head: bs.NoBlock,
		},
		{
			name:    "single block",
			head:    4,
			setupFn: func(t *testing.T, s *InMemoryFATService) { link(t, s, 4) },
			want:    []int{4},
		},
		{
			name:    "fragmented chain through block zero",
			head:    5,
			setupFn: func(t *testing.T, s *InMemoryFATService) { link(t, s, 5, 0, 7, 2) },
			want:    []int{5, 0, 7, 2},
		},
		{
			name: "cycle",
			head: 1,
			setupFn: func(t *testing.T, s *InMemoryFATService) {
				link(t, s, 1, 2, 3)
				_ = s.Extend(3, 1)
			},
			want:    []int{1, 2, 3, 1, 2, 3, 1, 2},
			wantErr: fat.ErrCycle,
		},
		{
			name: "link into free block",
			head: 1,
			setupFn: func(t *testing.T, s *InMemoryFATService) {
				link(t, s, 1)
				_ = s.Extend(1, 6)
				_ = s.Release(6)
			},
			want:    []int{1},
			wantErr: fat.ErrBrokenChain,
		},
		{
			name:    "head is free",
			head:    3,
			wantErr: fat.ErrBrokenChain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestFAT(t, 8)
			if tt.setupFn != nil {
				tt.setupFn(t, s)
			}

			got, err := s.Walk(tt.head)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Walk() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Walk() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInMemoryFATService_FreeChain(t *testing.T) {
	s := newTestFAT(t, 8)
	link(t, s, 6, 2, 4)
	link(t, s, 1)

	freed, err := s.FreeChain(6)
	if err != nil {
		t.Fatalf("FreeChain() error = %v", err)
	}
	if freed != 3 {
		t.Errorf("FreeChain() freed %d, want 3", freed)
	}
	for _, b := range []int{6, 2, 4} {
		if !s.IsFree(b) {
			t.Errorf("block %d still allocated", b)
		}
	}
	if s.IsFree(1) {
		t.Errorf("unrelated chain was freed")
	}
	if got := s.FreeCount(); got != 7 {
		t.Errorf("FreeCount() = %d, want 7", got)
	}

	if freed, err := s.FreeChain(bs.NoBlock); freed != 0 || err != nil {
		t.Errorf("FreeChain(NoBlock) = (%d, %v), want (0, nil)", freed, err)
	}
}

func TestInMemoryFATService_FreeChainWithCycle(t *testing.T) {
	s := newTestFAT(t, 8)
	link(t, s, 0, 1, 2)
	_ = s.Extend(2, 0)

	freed, err := s.FreeChain(0)
	if err != nil {
		t.Fatalf("FreeChain() error = %v", err)
	}
	if freed != 3 || s.FreeCount() != 8 {
		t.Errorf("FreeChain() freed %d, FreeCount() = %d; want 3 and 8", freed, s.FreeCount())
	}
}

func TestInMemoryFATService_Reset(t *testing.T) {
	s := newTestFAT(t, 4)
	link(t, s, 0, 1, 2, 3)
	s.Reset()
	if got := s.FreeCount(); got != 4 {
		t.Errorf("FreeCount() after Reset = %d, want 4", got)
	}
}
