package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// ExtractTag верхнеуровневый повторяющийся элемент выписки.
const ExtractTag = "extract_contract_participation_share_holdings"

// StreamElements читает XML-файл инкрементально и вызывает fn для каждого
// верхнеуровневого элемента с тегом tag. В памяти держится ровно одно
// поддерево: элемент собирается токен за токеном, после возврата fn ссылка
// на него отбрасывается. Содержимое вне искомых элементов не сохраняется.
//
// Ошибка fn прерывает чтение файла; изоляция сбоев на уровне элемента —
// обязанность вызывающего (логировать и вернуть nil).
func StreamElements(path string, tag string, fn func(*etree.Element) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	var root *etree.Element // собираемый элемент выписки
	var cur *etree.Element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root == nil {
				if t.Name.Local != tag {
					continue
				}
				root = etree.NewElement(t.Name.Local)
				cur = root
			} else {
				cur = cur.CreateElement(t.Name.Local)
			}
			for _, a := range t.Attr {
				cur.CreateAttr(a.Name.Local, a.Value)
			}
		case xml.CharData:
			if cur != nil {
				cur.CreateText(string(t))
			}
		case xml.EndElement:
			if cur == nil {
				continue
			}
			if cur == root {
				err := fn(root)
				root = nil
				cur = nil
				if err != nil {
					return err
				}
			} else {
				cur = cur.Parent()
			}
		}
	}
}
