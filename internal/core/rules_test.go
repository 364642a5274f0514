package core

import (
	"context"
	"testing"
)

func TestDefaultRulesEngineAllowsCleanState(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	garment := mustCreateGarment(t, svc, CreateGarmentInput{Name: "Clean", Category: "tops"})
	cotton := mustCreateMaterial(t, svc, "Cotton")
	if _, res, err := svc.AddMaterialToGarment(ctx, garment.ID, cotton.ID, pct(100)); err != nil {
		t.Fatalf("add: %v", err)
	} else if res.HasBlocking() {
		t.Fatalf("unexpected blocking result %+v", res)
	}
}

func TestPromotionGateSkippedWhenStateUnchanged(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	garment := mustCreateGarment(t, svc, CreateGarmentInput{Name: "Approved Coat", Category: "outerwear"})
	wool := mustCreateMaterial(t, svc, "Wool")
	if _, _, err := svc.AddMaterialToGarment(ctx, garment.ID, wool.ID, pct(100)); err != nil {
		t.Fatalf("add wool: %v", err)
	}
	approved := StateApproved
	if _, _, _, err := svc.UpdateGarment(ctx, garment.ID, UpdateGarmentInput{LifecycleState: &approved}); err != nil {
		t.Fatalf("promote: %v", err)
	}

	// renaming an approved garment must not re-run the promotion gate
	newName := "Approved Coat v2"
	if _, _, _, err := svc.UpdateGarment(ctx, garment.ID, UpdateGarmentInput{Name: &newName}); err != nil {
		t.Fatalf("rename approved garment: %v", err)
	}
}
