package reconciler

import (
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// updateNotes 回写演讲者备注。原容器没有备注页时就地创建，
// 创建失败（如缺少备注母版）只记录，不影响其余回写。
func (t *task) updateNotes(slidePath string, notes *presentation.SpeakerNotes) {
	if notes.Text == "" {
		return
	}
	if err := t.pkg.SetNotesText(slidePath, notes.Text); err != nil {
		t.logger.Warn("备注回写失败", zap.String("part", slidePath), zap.Error(err))
		return
	}

	if notesPath, ok := t.pkg.NotesPathFor(slidePath); ok {
		if body, err := t.pkg.NotesBody(notesPath); err == nil {
			t.rtlParagraphs(body)
			t.enableAutoShrink(body)
		}
	}
	t.st.NotesUpdated++
}
