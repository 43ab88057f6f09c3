package engine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEngineScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine End-To-End Scenarios")
}
