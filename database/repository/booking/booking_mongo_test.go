package bookingRepo

import (
	"testing"
	"time"

	"servicehub/models"

	"go.mongodb.org/mongo-driver/bson"
)

func TestVersionedFilterMatchesStoredVersionField(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	b := models.NewBooking("b1", models.Customer{ID: "c1"}, "", at)
	b.Version = 3

	f := VersionedFilter(b.ID, b.Version)
	if len(f) != 2 || f["id"] != "b1" || f["version"] != int64(3) {
		t.Fatalf("filter=%v, want id and expected version only", f)
	}

	// The replacement is written at the next version under the same keys the filter reads.
	b.Version++
	raw, err := bson.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for key := range f {
		if _, ok := doc[key]; !ok {
			t.Fatalf("stored document has no %q field: %v", key, doc)
		}
	}
	if doc["id"] != "b1" || doc["version"] != int64(4) {
		t.Fatalf("replacement id=%v version=%v, want b1 at 4", doc["id"], doc["version"])
	}
	if doc["status"] != string(models.StatusPending) {
		t.Fatalf("replacement status=%v", doc["status"])
	}
}

func TestListQuery(t *testing.T) {
	cases := []struct {
		name string
		f    ListFilter
		want bson.M
	}{
		{"everything", ListFilter{}, bson.M{}},
		{"status only", ListFilter{Status: models.StatusPending}, bson.M{"status": models.StatusPending}},
		{"organization and branch", ListFilter{OrganizationID: "org-1", BranchID: "br-1"}, bson.M{"organization": "org-1", "branch": "br-1"}},
		{"serviceman", ListFilter{ServicemanID: "s1"}, bson.M{"assignment.serviceman": "s1"}},
	}
	for _, tt := range cases {
		got := ListQuery(tt.f)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: query=%v, want %v", tt.name, got, tt.want)
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Fatalf("%s: %s=%v, want %v", tt.name, k, got[k], v)
			}
		}
	}

	q := ListQuery(ListFilter{CustomerID: "c1", Status: models.StatusConfirmed})
	or, ok := q["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("customer scope should match the customer or the requester: %v", q)
	}
	if or[0].(bson.M)["customer"] != "c1" || or[1].(bson.M)["requestedBy.id"] != "c1" {
		t.Fatalf("customer scope=%v", or)
	}
	if q["status"] != models.StatusConfirmed {
		t.Fatalf("status dropped from customer query: %v", q)
	}
}
