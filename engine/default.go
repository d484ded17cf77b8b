package engine

// DefaultScript groups the rat brain atlas regions the map was drawn for.
const DefaultScript = `
OLF = ["MOB", "AOB", "AOA", "TTv", "TTd", "PIR", "NLOT", "TR"]
PARAH = ["IG", "FC", "ENTm", "ENTl", "PERI", "ECT", "CLA", "6b"]
PFC = ["ILA", "PL", "ACAv", "ACAd"]
ISU = ["AIv", "AId", "AIp"]
ORB = ["ORBv", "ORBvl", "ORBm", "ORBl"]
PSM = ["MOp", "MOs"]
SSR = ["SSp", "SSs"]
AUD = ["AUDv", "AUDp", "AUDd", "AUDpo"]
VIS = ["VISrl", "VISal", "VISlla", "VISll", "VISli", "VISlm", "VISpl", "VISp", "VISam", "VISpm"]
EP = ["EPv", "EPd"]
RSP = ["RSPv", "RSPv.a", "RSPv.b/c", "RSPd", "RSPagl"]
GVA = ["GU", "VISC"]

CORTICAL = OLF + PARAH + PFC + ISU + ORB + PSM + SSR + AUD + VIS + EP + RSP + GVA

AHA = ["AHA", "AHNa", "AHNc", "AHNp", "AHNd"]
DHA = ["DMHa", "DMHp", "DMHv"]
MAMMILLARY = ["TM", "MM", "LM", "SUMm", "SUMl"]
LHA = ["LHAa", "LHAjvv", "LHAjvd", "LHAjp", "LHAjd", "LHAsfa", "LHAsfp", "LHAs", "LHAv", "LHAd", "LHAp"]

HYPOTHALAMUS = AHA + DHA + MAMMILLARY + LHA

CEA = ["CEAm", "CEAl", "CEAc"]
MEA = ["MEAav", "MEAad", "MEApv", "MEApd"]
BST = ["BSTam", "BSTfu", "BSTv", "BSTmg", "BSTdm", "BSTal", "BSTov", "BSTju", "BSTrh", "BSTpr", "BSTif", "BSTtr", "BSTd", "BSTse"]

AMYGDALA = CEA + MEA + BST + ["AAA", "IA"]

LS = ["LSr.m.v", "LSr.m.d", "LSr.vl", "LSr.dl", "LSc.v", "LSc.d", "LSv"]

SEPTAL_STRIATUM = LS + ["MS", "NDB", "ACB"]

GROUP_ORDER = ["Cortical", "Hypothalamus", "Amygdala", "Septal Striatum", "Other"]

def assign_group(region):
    if region in CORTICAL:
        return "Cortical"
    if region in HYPOTHALAMUS:
        return "Hypothalamus"
    if region in AMYGDALA:
        return "Amygdala"
    if region in SEPTAL_STRIATUM:
        return "Septal Striatum"
    return "Other"
`
