package present

// Section titles
const (
	TitleOverall            = "종합 평가"
	TitleOrganization       = "기관 정보"
	TitleWarnings           = "주의사항"
	TitleStrengths          = "잘한 점"
	TitleImprovements       = "개선할 점"
	TitleKeywords           = "키워드 분석"
	TitleCoreValues         = "핵심가치 반영도"
	TitleNCS                = "NCS 직업기초능력"
	TitleSkillMatch         = "직무 역량 매칭"
	TitlePastQuestions      = "자소서 기출문항"
	TitleSimilarQuestions   = "유사 기출문항"
	TitleInterviewDetail    = "면접 정보"
	TitleInterviewQuestions = "예상 면접 질문"
	TitleModelAnswer        = "모범 답안"
)

// Fixed labels
const (
	LabelNone          = "없음"
	LabelNoIssues      = "발견된 문제가 없습니다"
	LabelFound         = "포함된 키워드"
	LabelMissing       = "누락된 키워드"
	LabelMatchRate     = "매칭률"
	LabelLength        = "글자 수"
	LabelCurrentText   = "현재 문장"
	LabelImprovedText  = "개선 예시"
	LabelSuggestion    = "제안"
	LabelEvidence      = "근거"
	LabelAnswerTips    = "답변 팁"
	LabelSampleAnswer  = "예시 답변"
	LabelFrequent      = "빈출"
	LabelPrediction    = "예상"
	LabelRequired      = "필수"
	LabelCopy          = "복사하기"
	LabelCopied        = "복사됨!"
	LabelExport        = "PDF 저장"
	LabelExporting     = "생성 중..."
	LabelScrollTop     = "맨 위로"
	LabelEmptyReport   = "표시할 분석 결과가 없습니다"
	MessageCopyFailed  = "클립보드 복사에 실패했습니다. 직접 선택하여 복사해 주세요."
	MessageExportError = "PDF 생성에 실패했습니다. 잠시 후 다시 시도해 주세요."
	MessageExportBusy  = "이미 PDF를 생성하고 있습니다."
)

// DefaultDocumentTitle is used when no title is supplied for a document or file name.
const DefaultDocumentTitle = "자소서_분석결과"
