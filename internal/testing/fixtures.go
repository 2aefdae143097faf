package testing

import "strings"

// SampleAGS is a small AGS 4 file with two boreholes, three strata and three contaminant
// results. BH2 has no national-grid coordinates and falls back to local coordinates.
const SampleAGS = `"GROUP","PROJ"
"HEADING","PROJ_ID","PROJ_NAME"
"UNIT","",""
"TYPE","ID","X"
"DATA","P001","Riverside Works, Phase 2"

"GROUP","TRAN"
"HEADING","TRAN_ISNO","TRAN_DATE","TRAN_AGS"
"UNIT","","yyyy-mm-dd",""
"TYPE","X","DT","X"
"DATA","1","2023-05-14","4.1"

"GROUP","LOCA"
"HEADING","LOCA_ID","LOCA_TYPE","LOCA_STAT","LOCA_NATE","LOCA_NATN","LOCA_GL","LOCA_FDEP","LOCA_LOCX","LOCA_LOCY","LOCA_STAR","LOCA_ENDD","LOCA_PURP","LOCA_REM","FILE_FSET"
"UNIT","","","","m","m","m","m","m","m","yyyy-mm-dd","yyyy-mm-dd","","",""
"TYPE","ID","PA","PA","2DP","2DP","2DP","2DP","2DP","2DP","DT","DT","X","X","X"
"DATA","BH1","CP","FINAL","523145.20","178432.10","12.50","20.00","","","2023-04-01","2023-04-03","Ground investigation","Water strike at 4.2m, sealed",""
"DATA","BH2","CP","FINAL","","","10.00","15.00","105.50","220.25","2023-04-04","2023-04-05","","",""

"GROUP","GEOL"
"HEADING","LOCA_ID","GEOL_TOP","GEOL_BASE","GEOL_DESC","GEOL_LEG","GEOL_GEOL","GEOL_GEO2","GEOL_STAT","GEOL_BGS","GEOL_REM","FILE_FSET"
"UNIT","","m","m","","","","","","","",""
"TYPE","ID","2DP","2DP","X","PA","PA","PA","X","PA","X","X"
"DATA","BH1","0.00","1.20","Firm brown sandy CLAY","201","MG","","","MGR","",""
"DATA","BH1","1.20","6.50","Stiff grey CLAY","201","","LC","","LC","",""
"DATA","BH2","0.00","0.80","TOPSOIL","001","TS","","","","",""

"GROUP","ERES"
"HEADING","LOCA_ID","SAMP_TOP","SAMP_REF","SAMP_TYPE","SAMP_ID","SPEC_DPTH","ERES_CODE","ERES_NAME","ERES_RVAL","ERES_RUNI","ERES_RTYP","ERES_MATX","ERES_RDLM","ERES_DUNI","ERES_DETF","ERES_ORG","ERES_RRES","ERES_DIL","ERES_LAB","ERES_DTIM"
"UNIT","","m","","","","m","","","","","","","","","","","","","","yyyy-mm-dd"
"TYPE","ID","2DP","X","PA","ID","2DP","PA","X","X","PU","PA","PA","X","PU","YN","YN","YN","0DP","X","DT"
"DATA","BH1","0.50","ES1","ES","S1","","7440-38-2","Arsenic","12","mg/kg","Initial","SOLID","0.5","mg/kg","Y","N","Y","1","ACME Labs","2023-04-10"
"DATA","BH1","","ES2","ES","S2","2.00","7439-92-1","Lead","850","µg/kg","Initial","SOLID","","","Y","N","Y","","ACME Labs","2023-04-10"
"DATA","BH2","","ES3","W","S3","","7440-43-9","Cadmium","0.2","mg/L","Initial","WATER","","","N","N","Y","","ACME Labs","2023-04-11"
`

// SampleAGSLines returns SampleAGS split into lines.
func SampleAGSLines() []string {
	return strings.Split(SampleAGS, "\n")
}
