package utils

import (
	"testing"

	"sensor-dashboard/src/models"
)

func TestRingBufferKeepsNewest(t *testing.T) {
	rb := NewRingBuffer("co2", 3)
	for i := int64(0); i < 5; i++ {
		rb.Append(models.MBucketRecord{StartTime: i * 60, Minimum: float64(i), Count: int(i)})
	}

	if !rb.IsFull() || rb.Size() != 3 {
		t.Fatalf("size = %d", rb.Size())
	}
	all := rb.GetAll()
	if len(all) != 3 || all[0].StartTime != 120 || all[2].StartTime != 240 {
		t.Fatalf("unexpected order %+v", all)
	}
	if all[2].Channel != "co2" || all[2].EndTime != 300 || all[2].Count != 4 {
		t.Fatalf("unexpected record %+v", all[2])
	}

	latest := rb.GetLatest(2)
	if len(latest) != 2 || latest[0].StartTime != 180 {
		t.Fatalf("latest = %+v", latest)
	}

	rb.Clear()
	if len(rb.GetAll()) != 0 {
		t.Fatalf("clear left data behind")
	}
}

func TestRingItemsOldestFirst(t *testing.T) {
	r := NewRing[string](2)
	r.Push("a")
	if items := r.Items(); len(items) != 1 || items[0] != "a" {
		t.Fatalf("items = %v", items)
	}
	r.Push("b")
	r.Push("c")
	if items := r.Items(); len(items) != 2 || items[0] != "b" || items[1] != "c" {
		t.Fatalf("items = %v", items)
	}
}

func TestAlignBucket(t *testing.T) {
	start, end := AlignBucket(3725, 600)
	if start != 3600 || end != 4200 {
		t.Fatalf("bucket = [%d, %d)", start, end)
	}
}
