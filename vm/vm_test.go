package vm

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TableType", func() {
	DescribeTable("should parse names and numeric codes",
		func(input string, expected TableType) {
			t, err := ParseTableType(input)

			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(Equal(expected))
		},
		Entry("dense", "dense", Dense),
		Entry("code 0", "0", Dense),
		Entry("two-level", "two-level", TwoLevel),
		Entry("underscore", "TWO_LEVEL", TwoLevel),
		Entry("code 2", "2", ThreeLevel),
		Entry("inverted", " Inverted ", Inverted),
	)

	It("should reject unknown table types with a configuration error", func() {
		_, err := ParseTableType("hashed")

		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Field).To(Equal("table type"))
	})

	It("should report the levels consulted per translation", func() {
		Expect(Dense.Levels()).To(Equal(1))
		Expect(TwoLevel.Levels()).To(Equal(2))
		Expect(ThreeLevel.Levels()).To(Equal(3))
		Expect(Inverted.Levels()).To(Equal(1))
		Expect(Inverted.IsHierarchical()).To(BeFalse())
	})
})

var _ = Describe("Op", func() {
	It("should parse trace notation", func() {
		op, err := ParseOp("W")
		Expect(err).NotTo(HaveOccurred())
		Expect(op.IsWrite()).To(BeTrue())

		op, err = ParseOp("r")
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(Read))
	})

	It("should reject other letters", func() {
		_, err := ParseOp("X")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Clock", func() {
	It("should tick monotonically from one", func() {
		c := NewClock()

		Expect(c.Now()).To(Equal(uint64(0)))
		Expect(c.Tick()).To(Equal(uint64(1)))
		Expect(c.Tick()).To(Equal(uint64(2)))
		Expect(c.Now()).To(Equal(uint64(2)))
	})
})

var _ = Describe("IntegrityViolation", func() {
	It("should panic", func() {
		Expect(func() { IntegrityViolation("frame %d", 3) }).To(Panic())
	})
})
