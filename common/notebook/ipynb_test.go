package notebook_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scusemua/notebook-commands/common/notebook"
)

const sampleNotebook = `{
 "cells": [
  {
   "cell_type": "markdown",
   "id": "c1",
   "metadata": {},
   "source": ["# Heading\n", "text"]
  },
  {
   "cell_type": "code",
   "execution_count": 3,
   "id": "c2",
   "metadata": {"tags": ["setup"]},
   "outputs": [
    {"name": "stdout", "output_type": "stream", "text": ["hello\n"]},
    {"data": {"text/plain": ["42"]}, "execution_count": 3, "metadata": {}, "output_type": "execute_result"}
   ],
   "source": "x = 42\nx"
  },
  {
   "cell_type": "raw",
   "metadata": {},
   "source": "raw text"
  }
 ],
 "metadata": {
  "kernelspec": {"display_name": "Python 3", "language": "python", "name": "python3"},
  "language_info": {"name": "python", "version": "3.11.4"},
  "custom": {"keep": true}
 },
 "nbformat": 4,
 "nbformat_minor": 5
}`

var _ = Describe("ipynb", func() {
	It("Will decode cells, outputs and metadata", func() {
		doc, err := notebook.Decode("sample.ipynb", []byte(sampleNotebook))
		Expect(err).To(BeNil())
		Expect(doc.CellCount()).To(Equal(3))

		md := doc.Metadata()
		Expect(md.KernelSpec.Name).To(Equal("python3"))
		Expect(md.LanguageInfo.Version).To(Equal("3.11.4"))
		Expect(md.Extra).To(HaveKey("custom"))

		first, _ := doc.CellAt(0)
		Expect(first.Kind()).To(Equal(notebook.Markup))
		Expect(first.Source()).To(Equal("# Heading\ntext"))

		second, _ := doc.CellAt(1)
		Expect(second.Kind()).To(Equal(notebook.Code))
		Expect(second.Language()).To(Equal("python"))
		count, ok := second.ExecutionCount()
		Expect(ok).To(BeTrue())
		Expect(count).To(Equal(3))

		outputs := second.Outputs()
		Expect(outputs).To(HaveLen(2))
		text, ok := outputs[0].PlainText()
		Expect(ok).To(BeTrue())
		Expect(text).To(Equal("hello\n"))
		text, ok = outputs[1].PlainText()
		Expect(ok).To(BeTrue())
		Expect(text).To(Equal("42"))

		third, _ := doc.CellAt(2)
		Expect(third.Kind()).To(Equal(notebook.Code))
		Expect(third.Language()).To(Equal("raw"))
	})

	It("Will encode a decoded notebook without losing information", func() {
		doc, err := notebook.Decode("sample.ipynb", []byte(sampleNotebook))
		Expect(err).To(BeNil())

		encoded, err := notebook.Encode(doc)
		Expect(err).To(BeNil())

		var nb map[string]interface{}
		Expect(json.Unmarshal(encoded, &nb)).To(Succeed())
		Expect(nb["nbformat"]).To(BeEquivalentTo(4))
		Expect(nb["nbformat_minor"]).To(BeEquivalentTo(5))

		metadata := nb["metadata"].(map[string]interface{})
		Expect(metadata).To(HaveKey("custom"))
		Expect(metadata).To(HaveKey("kernelspec"))

		cells := nb["cells"].([]interface{})
		Expect(cells).To(HaveLen(3))

		markdown := cells[0].(map[string]interface{})
		Expect(markdown["cell_type"]).To(Equal("markdown"))
		Expect(markdown["id"]).To(Equal("c1"))
		Expect(markdown).ToNot(HaveKey("outputs"))
		Expect(markdown["source"]).To(Equal([]interface{}{"# Heading\n", "text"}))

		code := cells[1].(map[string]interface{})
		Expect(code["cell_type"]).To(Equal("code"))
		Expect(code["execution_count"]).To(BeEquivalentTo(3))
		Expect(code["outputs"]).To(HaveLen(2))
		Expect(code["metadata"]).To(HaveKey("tags"))

		raw := cells[2].(map[string]interface{})
		Expect(raw["cell_type"]).To(Equal("raw"))

		roundTripped, err := notebook.Decode("sample.ipynb", encoded)
		Expect(err).To(BeNil())
		Expect(roundTripped.CellCount()).To(Equal(3))
	})

	It("Will emit a null execution count and empty outputs for new code cells", func() {
		doc := notebook.NewDocument("new.ipynb", notebook.Metadata{},
			notebook.CellData{Kind: notebook.Code, Source: "", Language: "python"})

		encoded, err := notebook.Encode(doc)
		Expect(err).To(BeNil())

		var nb map[string]interface{}
		Expect(json.Unmarshal(encoded, &nb)).To(Succeed())
		cell := nb["cells"].([]interface{})[0].(map[string]interface{})
		Expect(cell).To(HaveKeyWithValue("execution_count", BeNil()))
		Expect(cell["outputs"]).To(BeEmpty())
	})

	It("Will reject malformed and unsupported notebooks", func() {
		_, err := notebook.Decode("bad.ipynb", []byte("{"))
		Expect(err).To(MatchError(notebook.ErrInvalidNotebook))

		_, err = notebook.Decode("old.ipynb", []byte(`{"cells": [], "metadata": {}, "nbformat": 3, "nbformat_minor": 0}`))
		Expect(err).To(MatchError(notebook.ErrInvalidNotebook))

		_, err = notebook.Decode("odd.ipynb", []byte(`{"cells": [{"cell_type": "widget", "metadata": {}, "source": ""}], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`))
		Expect(err).To(MatchError(notebook.ErrInvalidNotebook))
	})
})
