package multibody_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMultibody(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Multibody Suite")
}
