package fdio

import "testing"

// LockFileEx locks belong to the handle, so a second handle in the same
// process observes them.
func TestLockConflictAcrossHandles(t *testing.T) {
	fd, path := openTemp(t, "lock", ModeReadWrite)
	other := openReadOnly(t, path)

	ok, err := OS{}.Lock(fd, 0, 10, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Expected lock to be acquired")
	}

	ok, err = OS{}.Lock(other, 0, 10, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("Expected shared lock to be unavailable while an exclusive lock is held")
	}

	if err = (OS{}).Unlock(fd, 0, 10); err != nil {
		t.Fatal(err)
	}

	ok, err = OS{}.Lock(other, 0, 10, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("Expected shared lock to be acquired after unlock")
	}
	if err = (OS{}).Unlock(other, 0, 10); err != nil {
		t.Fatal(err)
	}
}
