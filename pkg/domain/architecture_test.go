package domain_test

import (
	"testing"

	"stitchcore/testutil"
)

func TestDomainPackageImportsNoInternalPackages(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/domain must stay importable without the internal tree")
}
