package commands_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/extension/internal/commands"
)

var _ = Describe("Registry", func() {
	var registry *commands.Registry

	echo := func(_ context.Context, args ...interface{}) (interface{}, error) {
		return args, nil
	}

	BeforeEach(func() {
		registry = commands.NewRegistry()
	})

	It("Will execute registered commands with their arguments", func() {
		_, err := registry.Register("test.echo", echo)
		Expect(err).To(BeNil())

		result, err := registry.Execute(context.Background(), "test.echo", "a", 1.0)
		Expect(err).To(BeNil())
		Expect(result).To(Equal([]interface{}{"a", 1.0}))
	})

	It("Will refuse duplicate registrations and unknown commands", func() {
		_, err := registry.Register("test.echo", echo)
		Expect(err).To(BeNil())

		_, err = registry.Register("test.echo", echo)
		Expect(err).To(MatchError(commands.ErrCommandExists))

		_, err = registry.Execute(context.Background(), "test.missing")
		Expect(err).To(MatchError(commands.ErrCommandNotFound))
	})

	It("Will list commands in registration order and forget unregistered ones", func() {
		_, err := registry.Register("test.b", echo)
		Expect(err).To(BeNil())
		unregister, err := registry.Register("test.a", echo)
		Expect(err).To(BeNil())
		_, err = registry.Register("test.c", echo)
		Expect(err).To(BeNil())

		Expect(registry.Commands()).To(Equal([]string{"test.b", "test.a", "test.c"}))

		unregister()
		unregister()
		Expect(registry.Commands()).To(Equal([]string{"test.b", "test.c"}))
		Expect(registry.Has("test.a")).To(BeFalse())

		_, err = registry.Register("test.a", echo)
		Expect(err).To(BeNil())
		Expect(registry.Commands()).To(Equal([]string{"test.b", "test.c", "test.a"}))
	})

	It("Will list the registered commands through a command", func() {
		_, err := registry.Register("test.echo", echo)
		Expect(err).To(BeNil())
		_, err = registry.RegisterListCommand()
		Expect(err).To(BeNil())

		result, err := registry.Execute(context.Background(), commands.ListCommands)
		Expect(err).To(BeNil())
		Expect(result).To(Equal([]string{"test.echo", commands.ListCommands}))
	})
})

var _ = Describe("Arguments", func() {
	DescribeTable("Will read integers the way they are sent by clients",
		func(value interface{}, expected int, expectedOk bool) {
			n, ok := commands.IntArg([]interface{}{value}, 0)
			Expect(ok).To(Equal(expectedOk))
			if expectedOk {
				Expect(n).To(Equal(expected))
			}
		},
		Entry("int", 3, 3, true),
		Entry("JSON number", 3.0, 3, true),
		Entry("fractional JSON number", 3.7, 3, true),
		Entry("json.Number", json.Number("12"), 12, true),
		Entry("numeric string", "4", 4, true),
		Entry("string with trailing text", " 5 cells", 5, true),
		Entry("negative string", "-1", -1, true),
		Entry("non-numeric string", "five", 0, false),
		Entry("null", nil, 0, false),
		Entry("boolean", true, 0, false),
	)

	It("Will treat missing and null strings as empty and refuse other types", func() {
		s, err := commands.StringArg(nil, 0)
		Expect(err).To(BeNil())
		Expect(s).To(BeEmpty())

		s, err = commands.StringArg([]interface{}{nil}, 0)
		Expect(err).To(BeNil())
		Expect(s).To(BeEmpty())

		_, err = commands.StringArg([]interface{}{42.0}, 0)
		Expect(err).ToNot(BeNil())
	})

	It("Will read ranges from objects", func() {
		r, ok := commands.RangeArg(map[string]interface{}{"start": 1.0, "end": "3"})
		Expect(ok).To(BeTrue())
		Expect(r).To(Equal(notebook.Range{Start: 1, End: 3}))

		r, ok = commands.RangeArg(notebook.Range{Start: 0, End: 2})
		Expect(ok).To(BeTrue())
		Expect(r.End).To(Equal(2))

		_, ok = commands.RangeArg(map[string]interface{}{"start": 1.0})
		Expect(ok).To(BeFalse())
		_, ok = commands.RangeArg("0:2")
		Expect(ok).To(BeFalse())
	})
})
