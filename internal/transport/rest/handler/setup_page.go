package handler

import "html/template"

// setupPage lets a project owner paste a token and pick a survey
var setupPage = template.Must(template.New("connect").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Connect SurveyMonkey</title>
<style>
body{font-family:Arial,Helvetica,sans-serif;margin:40px;background:#f7f7f7;color:#222;}
.card{max-width:520px;margin:0 auto;background:#fff;padding:24px;border-radius:12px;box-shadow:0 10px 30px rgba(0,0,0,0.08);}
label{display:block;margin-top:16px;font-weight:600;}
input,select,button{width:100%;padding:10px;margin-top:8px;border:1px solid #ccc;border-radius:8px;font-size:14px;}
button{background:#0f62fe;color:#fff;border:none;cursor:pointer;}
button.secondary{background:#444;margin-top:12px;}
.status{margin-top:12px;font-size:13px;color:#555;}
</style>
</head>
<body>
<div class="card">
<h2>Connect SurveyMonkey</h2>
<p>Paste a SurveyMonkey access token and select a survey.</p>
<label>Access Token</label>
<input id="token" type="password" placeholder="SurveyMonkey access token" />
<button id="load" class="secondary" type="button">Load Surveys</button>
<label>Survey</label>
<select id="survey"><option value="">Select a survey</option></select>
<button id="connect" type="button">Connect</button>
<div class="status" id="status"></div>
</div>
<script>
const projectId = {{.ProjectID}};
const statusEl = document.getElementById("status");
const surveyEl = document.getElementById("survey");

document.getElementById("load").addEventListener("click", async () => {
  statusEl.textContent = "Loading surveys...";
  const token = document.getElementById("token").value.trim();
  if (!token) { statusEl.textContent = "Enter access token."; return; }
  const res = await fetch("/surveymonkey/surveys", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({access_token: token})});
  if (!res.ok) { statusEl.textContent = "Failed to load surveys."; return; }
  const data = await res.json();
  surveyEl.innerHTML = '<option value="">Select a survey</option>';
  (data.surveys || []).forEach(s => {
    const opt = document.createElement("option");
    opt.value = s.id;
    opt.textContent = s.title || s.id;
    surveyEl.appendChild(opt);
  });
  statusEl.textContent = "Select a survey to connect.";
});

document.getElementById("connect").addEventListener("click", async () => {
  statusEl.textContent = "Connecting...";
  const token = document.getElementById("token").value.trim();
  const surveyId = surveyEl.value;
  if (!token || !surveyId) { statusEl.textContent = "Token and survey required."; return; }
  const res = await fetch("/connect-surveymonkey", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify({project_id: projectId, access_token: token, survey_id: surveyId})});
  const data = await res.json();
  if (!res.ok) { statusEl.textContent = data.error || "Connect failed."; return; }
  statusEl.textContent = "Connected. You can close this tab.";
});
</script>
</body>
</html>
`))
