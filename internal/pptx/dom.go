package pptx

import (
	"strconv"

	"github.com/beevik/etree"
)

// DrawingML 命名空间前缀在合法生产者输出中是约定俗成的，
// etree 的无前缀查询（SelectElement("sp") 匹配任意前缀的 sp）
// 已经覆盖了前缀变体，这里只补充它缺少的小件。

// insertElementFirst 把 child 插到 parent 的第一个子元素之前。
// a:p 下的 a:pPr、a:tc 下的 a:tcPr 等属性元素有固定的先头位置要求。
func insertElementFirst(parent, child *etree.Element) {
	idx := len(parent.Child)
	for i, tok := range parent.Child {
		if _, ok := tok.(*etree.Element); ok {
			idx = i
			break
		}
	}
	parent.InsertChildAt(idx, child)
}

// ensureFirstElement 返回 parent 下的 tag 子元素，不存在则创建在先头位置。
// fullTag 带前缀，如 "a:pPr"。
func ensureFirstElement(parent *etree.Element, localTag, fullTag string) *etree.Element {
	if el := parent.SelectElement(localTag); el != nil {
		return el
	}
	el := etree.NewElement(fullTag)
	insertElementFirst(parent, el)
	return el
}

// removeChildElements 删除 parent 下全部 localTag 子元素，返回删除个数
func removeChildElements(parent *etree.Element, localTag string) int {
	removed := 0
	for {
		el := parent.SelectElement(localTag)
		if el == nil {
			return removed
		}
		parent.RemoveChild(el)
		removed++
	}
}

// int64Attr 读取整型属性
func int64Attr(el *etree.Element, key string) (int64, bool) {
	if el == nil {
		return 0, false
	}
	v := el.SelectAttrValue(key, "")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// intAttr 读取 int 属性
func intAttr(el *etree.Element, key string) (int, bool) {
	n, ok := int64Attr(el, key)
	return int(n), ok
}

// descendants 深度优先收集 root 下全部 localTag 后代元素
func descendants(root *etree.Element, localTag string) []*etree.Element {
	var out []*etree.Element
	stack := []*etree.Element{root}
	for len(stack) > 0 {
		el := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := el.ChildElements()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
		if el != root && el.Tag == localTag {
			out = append(out, el)
		}
	}
	return out
}

// firstDescendant 深度优先找第一个 localTag 后代
func firstDescendant(root *etree.Element, localTag string) *etree.Element {
	for _, child := range root.ChildElements() {
		if child.Tag == localTag {
			return child
		}
		if found := firstDescendant(child, localTag); found != nil {
			return found
		}
	}
	return nil
}
