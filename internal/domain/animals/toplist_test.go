package animals

import "testing"

func TestSelectTop_Empty(t *testing.T) {
	top := SelectTop(nil)
	if top.Oldest != nil || top.Newest != nil || top.Closest != nil || top.Furthest != nil {
		t.Fatalf("expected empty bundle for empty input, got %#v", top)
	}
}

func TestSelectTop_Extremes(t *testing.T) {
	records := []Animal{
		{ID: 1, DateDelta: 5, Distance: 40},
		{ID: 2, DateDelta: 30, Distance: 2},
		{ID: 3, DateDelta: 1, Distance: 100},
	}

	top := SelectTop(records)
	if top.Oldest == nil || top.Oldest.ID != 2 {
		t.Fatalf("oldest: expected id 2, got %#v", top.Oldest)
	}
	if top.Newest == nil || top.Newest.ID != 3 {
		t.Fatalf("newest: expected id 3, got %#v", top.Newest)
	}
	if top.Closest == nil || top.Closest.ID != 2 {
		t.Fatalf("closest: expected id 2, got %#v", top.Closest)
	}
	if top.Furthest == nil || top.Furthest.ID != 3 {
		t.Fatalf("furthest: expected id 3, got %#v", top.Furthest)
	}
}

func TestSelectTop_TiesKeepFirst(t *testing.T) {
	// en empate gana el primero en orden de entrada
	records := []Animal{
		{ID: 1, DateDelta: 7, Distance: 10},
		{ID: 2, DateDelta: 7, Distance: 10},
		{ID: 3, DateDelta: 7, Distance: 10},
	}

	top := SelectTop(records)
	if top.Oldest.ID != 1 || top.Newest.ID != 1 || top.Closest.ID != 1 || top.Furthest.ID != 1 {
		t.Fatalf("expected first record to win all ties, got %#v", top)
	}
}

func TestSelectTop_SingleRecord(t *testing.T) {
	records := []Animal{{ID: 9, DateDelta: 3, Distance: 1.5}}

	top := SelectTop(records)
	if top.Oldest.ID != 9 || top.Newest.ID != 9 || top.Closest.ID != 9 || top.Furthest.ID != 9 {
		t.Fatalf("expected single record in every slot, got %#v", top)
	}
}

func TestCountByOrganization(t *testing.T) {
	records := []Animal{
		{ID: 1, OrganizationID: "ON1"},
		{ID: 2, OrganizationID: "ON2"},
		{ID: 3, OrganizationID: "ON1"},
		{ID: 4, OrganizationID: ""},
		{ID: 5, OrganizationID: "ON3"},
		{ID: 6, OrganizationID: "ON2"},
		{ID: 7, OrganizationID: "ON1"},
	}

	counts := CountByOrganization(records)
	if len(counts) != 3 {
		t.Fatalf("expected 3 orgs, got %d", len(counts))
	}
	if counts[0].OrganizationID != "ON1" || counts[0].Count != 3 {
		t.Fatalf("expected ON1 x3 first, got %#v", counts[0])
	}
	if counts[1].OrganizationID != "ON2" || counts[1].Count != 2 {
		t.Fatalf("expected ON2 x2 second, got %#v", counts[1])
	}
	if counts[2].OrganizationID != "ON3" || counts[2].Count != 1 {
		t.Fatalf("expected ON3 x1 last, got %#v", counts[2])
	}
}
