package report

const pageTemplate = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<main id="report-root" data-source="{{if .ServerBacked}}server{{else}}page{{end}}"{{with .Revision}} data-revision="{{.}}"{{end}}>
{{- if .Empty}}
<section class="section empty"><p class="muted">{{label "empty"}}</p></section>
{{- end}}
{{- range .Sections}}
<section class="section" id="section-{{.ID}}">
<h2><span>{{.Icon}}</span> {{.Title}}{{with .Badge}} <span class="badge">{{.}}</span>{{end}}</h2>
{{.Body}}
</section>
{{- end}}
</main>
<button type="button" id="scroll-top" class="floating" data-floating aria-label="{{label "scrollTop"}}">↑</button>
<button type="button" id="export-button" class="floating" data-floating>{{label "export"}}</button>
<script>
(function () {
  var cfg = {
    exportURL: {{.ExportURL}},
    title: {{.Title}},
    modelAnswer: {{.ModelAnswer}},
    threshold: {{.Threshold}},
    confirmMs: {{.ConfirmMs}},
    labels: {
      copy: {{label "copy"}},
      copied: {{label "copied"}},
      exportIdle: {{label "export"}},
      exporting: {{label "exporting"}},
      copyFailed: {{label "copyFailed"}},
      exportFailed: {{label "exportFailed"}}
    }
  };
  var root = document.getElementById('report-root');
  var scrollTop = document.getElementById('scroll-top');
  var exportButton = document.getElementById('export-button');
  var copyButton = document.getElementById('copy-answer');
  var copyTimer = null;
  var exporting = false;

  function onScroll() {
    if (window.scrollY > cfg.threshold) {
      scrollTop.classList.add('visible');
    } else {
      scrollTop.classList.remove('visible');
    }
  }

  function onLoad() {
    window.addEventListener('scroll', onScroll, {passive: true});
    onScroll();
  }

  function onPageHide() {
    window.removeEventListener('scroll', onScroll);
    if (copyTimer !== null) {
      clearTimeout(copyTimer);
      copyTimer = null;
    }
  }

  function fallbackCopy(text) {
    var area = document.createElement('textarea');
    area.value = text;
    area.setAttribute('readonly', '');
    area.style.position = 'fixed';
    area.style.left = '-9999px';
    document.body.appendChild(area);
    area.select();
    var ok = false;
    try {
      ok = document.execCommand('copy');
    } finally {
      document.body.removeChild(area);
    }
    if (!ok) {
      throw new Error('copy command rejected');
    }
  }

  function writeClipboard(text) {
    if (navigator.clipboard && window.isSecureContext) {
      return navigator.clipboard.writeText(text).catch(function () {
        fallbackCopy(text);
      });
    }
    return new Promise(function (resolve) {
      fallbackCopy(text);
      resolve();
    });
  }

  function showCopied() {
    if (copyTimer !== null) {
      clearTimeout(copyTimer);
    }
    copyButton.textContent = cfg.labels.copied;
    copyButton.classList.add('copied');
    copyTimer = setTimeout(function () {
      copyTimer = null;
      copyButton.textContent = cfg.labels.copy;
      copyButton.classList.remove('copied');
    }, cfg.confirmMs);
  }

  function copyAnswer() {
    writeClipboard(cfg.modelAnswer).then(showCopied, function () {
      alert(cfg.labels.copyFailed);
    });
  }

  function captureMarkup() {
    var styles = '';
    var nodes = document.querySelectorAll('style');
    for (var i = 0; i < nodes.length; i++) {
      styles += nodes[i].outerHTML;
    }
    return '<!DOCTYPE html><html><head><meta charset="utf-8">' + styles + '</head><body>' + root.outerHTML + '</body></html>';
  }

  function filenameFrom(res) {
    var header = res.headers.get('Content-Disposition') || '';
    var lower = header.toLowerCase();
    var marker = "filename*=utf-8''";
    var at = lower.indexOf(marker);
    if (at >= 0) {
      return decodeURIComponent(header.substring(at + marker.length).split(';')[0]);
    }
    marker = 'filename=';
    at = lower.indexOf(marker);
    if (at >= 0) {
      return header.substring(at + marker.length).split(';')[0].split('"').join('');
    }
    return cfg.title + '.pdf';
  }

  function exportReport() {
    if (exporting) {
      return Promise.resolve(false);
    }
    exporting = true;
    exportButton.disabled = true;
    exportButton.textContent = cfg.labels.exporting;
    var body = {
      title: cfg.title,
      html: captureMarkup(),
      revision: root.getAttribute('data-revision') || ''
    };
    return fetch(cfg.exportURL, {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify(body)
    }).then(function (res) {
      if (!res.ok) {
        throw new Error('export failed with status ' + res.status);
      }
      return res.blob().then(function (blob) {
        var link = document.createElement('a');
        link.href = URL.createObjectURL(blob);
        link.download = filenameFrom(res);
        document.body.appendChild(link);
        link.click();
        document.body.removeChild(link);
        URL.revokeObjectURL(link.href);
        return true;
      });
    }).catch(function () {
      alert(cfg.labels.exportFailed);
      return false;
    }).finally(function () {
      exporting = false;
      exportButton.disabled = false;
      exportButton.textContent = cfg.labels.exportIdle;
    });
  }

  scrollTop.addEventListener('click', function () {
    window.scrollTo({top: 0, behavior: 'smooth'});
  });
  exportButton.addEventListener('click', exportReport);
  if (copyButton) {
    copyButton.addEventListener('click', copyAnswer);
  }
  window.addEventListener('load', onLoad);
  window.addEventListener('pagehide', onPageHide);
  window.essaylens = Object.freeze({exportReport: exportReport});
})();
</script>
</body>
</html>
`

const componentTemplates = `
{{define "chips"}}{{if .}}{{range .}}<span class="chip">{{.}}</span>{{end}}{{else}}<span class="muted">{{label "none"}}</span>{{end}}{{end}}
{{define "chips-found"}}{{if .}}{{range .}}<span class="chip found">{{.}}</span>{{end}}{{else}}<span class="muted">{{label "none"}}</span>{{end}}{{end}}
{{define "chips-missing"}}{{if .}}{{range .}}<span class="chip missing">{{.}}</span>{{end}}{{else}}<span class="muted">{{label "none"}}</span>{{end}}{{end}}

{{define "overall"}}
<div class="overall {{tierClass .OverallScore}}">
  <div class="overall-score"><strong>{{.OverallScore}}</strong><span class="muted">/100</span></div>
  <div class="overall-grade">{{gradeIcon .OverallGrade}} {{.OverallGrade}}</div>
</div>
{{with .OverallSummary}}<p class="summary">{{rich .}}</p>{{end}}
<div class="length-check length-{{.LengthCheck.Status}}">
  <span>{{label "length"}}: {{chars .LengthCheck.Current}} / {{chars .LengthCheck.Max}}</span>
  <span class="muted">({{percent .LengthCheck.Percentage}})</span>
  {{with .LengthCheck.Status}}<span class="badge">{{.}}</span>{{end}}
</div>
{{end}}

{{define "organization"}}{{with .OrganizationInfo}}
<h3>{{.Name}}</h3>
{{with .Website}}<p><a href="{{.}}" target="_blank" rel="noopener">{{.}}</a></p>{{end}}
{{with .TalentImage}}<p><strong>인재상</strong> {{rich .}}</p>{{end}}
<div><strong>핵심가치</strong> {{template "chips" .CoreValues}}</div>
{{if .RecentNews}}<div class="card"><strong>최근 소식</strong><ul>
{{range .RecentNews}}<li>{{if .URL}}<a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>{{else}}{{.Title}}{{end}}{{with .Date}} <span class="muted">{{.}}</span>{{end}}</li>
{{end}}</ul></div>{{end}}
{{if .InterviewKeywords}}<div><strong>면접 키워드</strong> {{template "chips" .InterviewKeywords}}</div>{{end}}
{{if .RecruitmentProcess}}<div><strong>채용 절차</strong> {{join .RecruitmentProcess " → "}}</div>{{end}}
{{with .DataUpdatedAt}}<p class="muted">업데이트 {{.}}</p>{{end}}
{{end}}{{end}}

{{define "warnings"}}
{{- if .Warnings}}{{range .Warnings}}
<div class="card {{sevClass .Severity}}">
  <div><span>{{warnIcon .Type}}</span> <strong>{{.Message}}</strong></div>
  {{with .DetectedText}}<p class="quote">{{.}}</p>{{end}}
  {{with .Suggestion}}<p>💡 {{rich .}}</p>{{end}}
</div>
{{- end}}{{else}}
<p class="no-issues">✅ {{label "noIssues"}}</p>
{{- end}}
{{end}}

{{define "strengths"}}{{range .Strengths}}
<div class="card">
  <div class="card-head"><strong>{{.Title}}</strong> <span class="chip {{scoreClass .Score}}">{{score .Score 10}}</span></div>
  {{with .Quote}}<p class="quote">"{{.}}"</p>{{end}}
  <p>{{rich .Evaluation}}</p>
</div>
{{end}}{{end}}

{{define "improvements"}}{{range .Improvements}}
<div class="card">
  <div class="card-head"><strong>{{.Title}}</strong> <span class="chip {{scoreClass .Score}}">{{score .Score 10}}</span></div>
  <p>{{rich .Problem}}</p>
  {{with .CurrentText}}<p class="quote"><strong>{{label "current"}}</strong> {{.}}</p>{{end}}
  <p class="improved"><strong>{{label "improved"}}</strong> {{.ImprovedText}}</p>
</div>
{{end}}{{end}}

{{define "keywords"}}{{with .KeywordAnalysis}}
<p><strong>{{label "matchRate"}}</strong> {{percent .MatchRate}}</p>
<div><strong>{{label "found"}}</strong> {{template "chips-found" .FoundKeywords}}</div>
<div><strong>{{label "missing"}}</strong> {{template "chips-missing" .MissingKeywords}}</div>
{{end}}{{end}}

{{define "core-values"}}{{range .CoreValueScores}}
<div class="card">
  <div class="card-head"><strong>{{if .Found}}✅{{else}}❌{{end}} {{.Value}}</strong> <span class="chip {{scoreClass .Score}}">{{score .Score 10}}</span></div>
  {{with .Evidence}}<p class="quote">{{.}}</p>{{end}}
  {{with .Suggestion}}<p>💡 {{rich .}}</p>{{end}}
</div>
{{end}}{{end}}

{{define "ncs"}}{{range .NCSCompetencyScores}}
<div class="card">
  <div class="card-head"><strong>{{if .Found}}✅{{else}}❌{{end}} {{.Name}}</strong>{{if eq .Importance "required"}} <span class="badge">{{label "required"}}</span>{{end}} <span class="chip {{scoreClass .Score}}">{{score .Score 10}}</span></div>
  {{with .Evidence}}<p class="quote">{{.}}</p>{{end}}
  {{with .Suggestion}}<p>💡 {{rich .}}</p>{{end}}
</div>
{{end}}{{end}}

{{define "skill-match"}}{{with .PositionSkillMatch}}
<p><strong>{{label "matchRate"}}</strong> {{percent .OverallMatchRate}}</p>
<table class="skill-table">
  <tr><th>전공</th><td>{{template "chips-found" .MatchedMajors}}</td><td>{{template "chips-missing" .MissingMajors}}</td></tr>
  <tr><th>자격증</th><td>{{template "chips-found" .MatchedCertifications}}</td><td>{{template "chips-missing" .MissingCertifications}}</td></tr>
  <tr><th>기술</th><td>{{template "chips-found" .MatchedSkills}}</td><td>{{template "chips-missing" .MissingSkills}}</td></tr>
</table>
{{with .Recommendation}}<p>💡 {{rich .}}</p>{{end}}
{{end}}{{end}}

{{define "past-questions"}}<ul class="question-list">
{{range .PastQuestions}}<li><span class="muted">{{.Year}}{{with .Half}} {{.}}{{end}}</span> {{.Question}}{{with .CharLimit}} <span class="muted">({{chars .}})</span>{{end}}{{if .IsPrediction}} <span class="badge">{{label "prediction"}}</span>{{end}}</li>
{{end}}</ul>{{end}}

{{define "similar-questions"}}{{range .SimilarQuestions}}
<div class="card">
  <div class="card-head"><span class="muted">{{.Year}}{{with .Half}} {{.}}{{end}}</span> <strong>{{.Question}}</strong> <span class="badge">{{similarity .Similarity}}</span></div>
  {{with .CharLimit}}<p class="muted">{{chars .}}</p>{{end}}
  <div>{{template "chips" .MatchedKeywords}}</div>
</div>
{{end}}{{end}}

{{define "interview-detail"}}{{with .InterviewDetail}}
<dl class="detail">
  {{with .FormatType}}<dt>면접 형식</dt><dd>{{.}}</dd>{{end}}
  {{if .Stages}}<dt>전형 단계</dt><dd>{{join .Stages " → "}}</dd>{{end}}
  {{with .Duration}}<dt>소요 시간</dt><dd>{{.}}</dd>{{end}}
  {{with .Difficulty}}<dt>난이도</dt><dd>{{.}}</dd>{{end}}
  {{with .PassRate}}<dt>합격률</dt><dd>{{.}}</dd>{{end}}
</dl>
{{if .FrequentQuestions}}<ul class="question-list">
{{range .FrequentQuestions}}<li>{{if eq .Frequency "high"}}<span class="badge">{{label "frequent"}}</span> {{end}}<strong>{{.Question}}</strong> <span class="muted">{{.Category}}</span>{{with .Tips}}<br><span>💡 {{rich .}}</span>{{end}}</li>
{{end}}</ul>{{end}}
{{end}}{{end}}

{{define "interview-questions"}}{{range .InterviewQuestions}}
<div class="card">
  <div class="card-head">{{if .IsFrequent}}<span class="badge">{{label "frequent"}}{{with .Years}} {{years .}}{{end}}</span> {{end}}<strong>{{.Question}}</strong></div>
  <p><strong>{{label "tips"}}</strong> {{rich .AnswerTips}}</p>
  {{with .SampleAnswer}}<p class="quote"><strong>{{label "sample"}}</strong> {{.}}</p>{{end}}
</div>
{{end}}{{end}}

{{define "model-answer"}}
<div class="answer-head"><span class="muted">{{chars .ModelAnswerLength}}</span> <button type="button" id="copy-answer">{{label "copy"}}</button></div>
<div class="answer" id="model-answer">{{.ModelAnswer}}</div>
{{end}}
`
